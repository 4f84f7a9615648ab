// Package support scripts the replies of the site's support chat widget.
package support

import (
	"context"
	"strings"
)

// ContactSource provides the current manager hand-off link.
type ContactSource interface {
	Get(ctx context.Context, key string) string
}

// Reply is one bot message plus quick-reply suggestions.
type Reply struct {
	Topic       string   `json:"topic"`
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions,omitempty"`
	ContactURL  string   `json:"contactUrl,omitempty"`
}

type script struct {
	topic       string
	keywords    []string
	text        string
	suggestions []string
	handoff     bool
}

// scripts are checked in order; the first keyword hit answers.
var scripts = []script{
	{
		topic:    "handoff",
		keywords: []string{"manager", "human", "person", "agent", "call me", "contact"},
		text:     "I'll connect you with a manager. Tap the link below and mention your channel name.",
		handoff:  true,
	},
	{
		topic:       "pricing",
		keywords:    []string{"price", "pricing", "cost", "fee", "commission", "how much"},
		text:        "We don't charge creators upfront. Our commission is agreed per campaign once a brand deal is confirmed.",
		suggestions: []string{"How do payouts work?", "Talk to a manager"},
	},
	{
		topic:       "verification",
		keywords:    []string{"verify", "verification", "verified", "check my channel", "badge"},
		text:        "Enter your channel link on the Verify page. We'll pull your public channel details and show an earnings estimate.",
		suggestions: []string{"What does the estimate mean?", "Talk to a manager"},
	},
	{
		topic:       "payouts",
		keywords:    []string{"payout", "payouts", "pay", "paid", "money", "earn", "estimate", "income"},
		text:        "Estimates are based on your audience size and typical sponsorship rates. Payouts are sent monthly after a campaign runs.",
		suggestions: []string{"How do I get verified?", "Talk to a manager"},
	},
	{
		topic:       "greeting",
		keywords:    []string{"hello", "hi", "hey", "good morning", "good evening"},
		text:        "Hi! I'm the agency assistant. Ask me about verification, pricing or payouts.",
		suggestions: []string{"How do I get verified?", "What does it cost?", "Talk to a manager"},
	},
}

var fallback = Reply{
	Topic:       "fallback",
	Text:        "Sorry, I didn't catch that. I can help with verification, pricing and payouts, or connect you with a manager.",
	Suggestions: []string{"How do I get verified?", "What does it cost?", "Talk to a manager"},
}

// Bot answers support chat messages from a fixed script.
type Bot struct {
	contact ContactSource
	key     string
}

// New creates a Bot. Hand-off replies link to the value of key in contact.
func New(contact ContactSource, key string) *Bot {
	return &Bot{contact: contact, key: key}
}

// Reply returns the scripted answer for message.
func (b *Bot) Reply(ctx context.Context, message string) Reply {
	words := tokenize(message)
	if words == "" {
		return fallback
	}

	for _, s := range scripts {
		if !matches(words, s.keywords) {
			continue
		}
		r := Reply{Topic: s.topic, Text: s.text, Suggestions: s.suggestions}
		if s.handoff && b.contact != nil {
			r.ContactURL = b.contact.Get(ctx, b.key)
		}
		return r
	}
	return fallback
}

// tokenize lowercases message and collapses punctuation to single spaces,
// padded so keywords can be matched on word boundaries.
func tokenize(message string) string {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '\'')
	})
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}

func matches(words string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(words, " "+k+" ") {
			return true
		}
	}
	return false
}
