// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND
// =============================================================================

// Slate - Brand color, header and assistant avatar
var Slate = lipgloss.AdaptiveColor{Light: "#385F71", Dark: "#7FA7BA"}

// SlateDeep - Header background
var SlateDeep = lipgloss.AdaptiveColor{Light: "#D7E3E9", Dark: "#1F3540"}

// Sand - Accent for the user side
var Sand = lipgloss.AdaptiveColor{Light: "#B5835A", Dark: "#E0B78F"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Fallback replies, warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Emerald - Ready state, confirmations
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#F3E8DC", Dark: "#4A3728"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#4A3728", Dark: "#F3E8DC"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#B5835A", Dark: "#E0B78F"}

var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#385F71", Dark: "#7FA7BA"}
