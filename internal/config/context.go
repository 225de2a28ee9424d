package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Context represents the operator's console state that survives a
// restart: the open conversation and the active list filters.
type Context struct {
	// SessionID is the conversation selected when the console closed.
	SessionID string `yaml:"session,omitempty"`
	// SessionName is the conversation's display name (for display).
	SessionName string `yaml:"session_name,omitempty"`
	// Channel filters the conversation list to one platform.
	Channel string `yaml:"channel,omitempty"`
	// TagID filters the conversation list to one tag, 0 means none.
	TagID int `yaml:"tag,omitempty"`
	// UpdatedAt is when the context was last modified.
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// IsEmpty returns true if no context is set.
func (c *Context) IsEmpty() bool {
	return c.SessionID == "" && c.Channel == "" && c.TagID == 0
}

// HasSelection returns true if a conversation is set.
func (c *Context) HasSelection() bool {
	return c.SessionID != ""
}

// HasFilter returns true if a channel or tag filter is set.
func (c *Context) HasFilter() bool {
	return c.Channel != "" || c.TagID != 0
}

// Clear removes all context.
func (c *Context) Clear() {
	c.SessionID = ""
	c.SessionName = ""
	c.Channel = ""
	c.TagID = 0
	c.UpdatedAt = time.Now()
}

// SetSelection sets the open conversation.
func (c *Context) SetSelection(sessionID, name string) {
	c.SessionID = sessionID
	c.SessionName = name
	c.UpdatedAt = time.Now()
}

// SetFilter sets the list filters. A changed filter drops the
// selection, since the open conversation may no longer be listed.
func (c *Context) SetFilter(channel string, tagID int) {
	if channel != c.Channel || tagID != c.TagID {
		c.SessionID = ""
		c.SessionName = ""
	}
	c.Channel = channel
	c.TagID = tagID
	c.UpdatedAt = time.Now()
}

// String returns a human-readable representation of the context.
func (c *Context) String() string {
	if c.IsEmpty() {
		return "(no context set)"
	}
	var parts []string
	if c.HasSelection() {
		name := c.SessionName
		if name == "" {
			name = shortID(c.SessionID)
		}
		parts = append(parts, fmt.Sprintf("session:%s", name))
	}
	if c.Channel != "" {
		parts = append(parts, fmt.Sprintf("channel:%s", c.Channel))
	}
	if c.TagID != 0 {
		parts = append(parts, fmt.Sprintf("tag:%d", c.TagID))
	}
	if len(parts) == 0 {
		return "(no context set)"
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += " " + parts[i]
	}
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ContextStore manages loading and saving context.
type ContextStore struct {
	path string
	mu   sync.RWMutex
}

// NewContextStore creates a new context store.
// If path is empty, uses the default path (~/.config/chatdesk/context.yaml).
func NewContextStore(path string) *ContextStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "chatdesk", "context.yaml")
	}
	return &ContextStore{path: path}
}

// DefaultContextStore returns a context store using the default path.
func DefaultContextStore() *ContextStore {
	return NewContextStore("")
}

// Path returns the context file path.
func (s *ContextStore) Path() string {
	return s.path
}

// Load reads the context from disk.
// Returns an empty context if the file doesn't exist.
func (s *ContextStore) Load() (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := &Context{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ctx, nil
		}
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	if err := yaml.Unmarshal(data, ctx); err != nil {
		return nil, fmt.Errorf("failed to parse context file: %w", err)
	}

	return ctx, nil
}

// Save writes the context to disk.
func (s *ContextStore) Save(ctx *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}

	data, err := yaml.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize context: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}

	return nil
}

// Clear removes the context file.
func (s *ContextStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove context file: %w", err)
	}
	return nil
}
