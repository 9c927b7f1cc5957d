// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// sdkEmptyResponse is the SDK's error text for a stream chunk with no body.
const sdkEmptyResponse = "empty response from model"

// SDKClient sends requests through the generative-ai-go SDK.
//
// Each call opens a fresh chat session whose history is every content except
// the last, then sends the last one. Nothing is kept between calls.
type SDKClient struct {
	client  *genai.Client
	apiKey  string
	logger  *log.Logger
	timeout time.Duration

	mu    sync.RWMutex
	model string
}

// NewSDKClient creates an SDK-backed client. opts are passed to the SDK
// after the API key, e.g. the endpoint from SDKOptions.
func NewSDKClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*SDKClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &SDKClient{
		client:  client,
		apiKey:  apiKey,
		logger:  log.Default(),
		timeout: DefaultTimeout,
		model:   model,
	}, nil
}

// SDKOptions returns the client options for a configured base URL. The
// public host is the SDK default and needs no option.
func SDKOptions(baseURL string) []option.ClientOption {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" || baseURL == DefaultBaseURL {
		return nil
	}
	return []option.ClientOption{option.WithEndpoint(baseURL)}
}

// WithTimeout bounds each call. Zero keeps the current value.
func (s *SDKClient) WithTimeout(timeout time.Duration) *SDKClient {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// WithLogger sets the logger used for call lines.
func (s *SDKClient) WithLogger(l *log.Logger) *SDKClient {
	if l != nil {
		s.logger = l
	}
	return s
}

// SetModel changes the model used for subsequent requests.
func (s *SDKClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
}

// Model returns the current model.
func (s *SDKClient) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Close releases the underlying SDK client.
func (s *SDKClient) Close() error {
	return s.client.Close()
}

// GenerateContent implements the same contract as Client.GenerateContent.
//
// The SDK reports blocked prompts and candidates as errors. They are turned
// back into a response without text, which is what the REST endpoint
// returns for them.
func (s *SDKClient) GenerateContent(ctx context.Context, contents []Content) (*GenerateContentResponse, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("no contents to send")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := s.Model()
	cs := s.client.GenerativeModel(model).StartChat()
	cs.History = toSDKContents(contents[:len(contents)-1])
	last := contents[len(contents)-1]

	s.logger.Printf("gemini/sdk: request %s, %d contents (key %s)", model, len(contents), KeyFingerprint(s.apiKey))
	start := time.Now()
	iter := cs.SendMessageStream(ctx, toSDKParts(last.Parts)...)
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if resp, ok := emptyResponse(err); ok {
				s.logger.Printf("gemini/sdk: response without text in %v: %v", time.Since(start).Round(time.Millisecond), err)
				return resp, nil
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}
	}
	s.logger.Printf("gemini/sdk: response in %v", time.Since(start).Round(time.Millisecond))

	return fromSDKResponse(iter.MergedResponse()), nil
}

// emptyResponse converts the SDK's blocked and empty-body errors into a
// response that carries the reason but no text.
func emptyResponse(err error) (*GenerateContentResponse, bool) {
	var blocked *genai.BlockedError
	switch {
	case errors.As(err, &blocked):
		out := &GenerateContentResponse{}
		if pf := blocked.PromptFeedback; pf != nil {
			out.PromptFeedback = &PromptFeedback{BlockReason: pf.BlockReason.String()}
		}
		if c := blocked.Candidate; c != nil {
			out.Candidates = []Candidate{{Index: int(c.Index), FinishReason: c.FinishReason.String()}}
		}
		return out, true
	case err.Error() == sdkEmptyResponse:
		return &GenerateContentResponse{}, true
	}
	return nil, false
}

func toSDKParts(parts []Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		out = append(out, genai.Text(p.Text))
	}
	return out
}

func toSDKContents(contents []Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		out = append(out, &genai.Content{Role: c.Role, Parts: toSDKParts(c.Parts)})
	}
	return out
}

// fromSDKResponse keeps only text parts; other part kinds are skipped.
func fromSDKResponse(resp *genai.GenerateContentResponse) *GenerateContentResponse {
	out := &GenerateContentResponse{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		c := Candidate{Index: int(cand.Index), FinishReason: cand.FinishReason.String()}
		if cand.Content != nil {
			content := &Content{Role: cand.Content.Role}
			for _, part := range cand.Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					content.Parts = append(content.Parts, Part{Text: string(txt)})
				}
			}
			c.Content = content
		}
		out.Candidates = append(out.Candidates, c)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		out.PromptFeedback = &PromptFeedback{BlockReason: resp.PromptFeedback.BlockReason.String()}
	}
	if resp.UsageMetadata != nil {
		out.UsageMetadata = &UsageMetadata{
			PromptTokenCount:     int(resp.UsageMetadata.PromptTokenCount),
			CandidatesTokenCount: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokenCount:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out
}
