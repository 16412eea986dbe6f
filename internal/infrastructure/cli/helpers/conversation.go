package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/quest/internal/domain"
)

// StdinPath selects standard input for --file.
const StdinPath = "-"

// ErrEmptyConversation is returned when no message was supplied at all.
var ErrEmptyConversation = errors.New("no messages supplied: pass text, --user, --file, or pipe a conversation on stdin")

// ConversationInput gathers every source a conversation can be built from.
type ConversationInput struct {
	System string
	File   string
	User   []string
	Args   []string
	Stdin  io.Reader
}

// BuildConversation assembles messages in this order: system prompt, file
// messages, --user values, then positional text as one user message. With no
// input at all, a piped stdin is read as a conversation file.
func BuildConversation(in ConversationInput) ([]domain.Message, error) {
	var messages []domain.Message

	if in.System != "" {
		messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: in.System})
	}

	file := in.File
	if file == "" && in.System == "" && len(in.User) == 0 && len(in.Args) == 0 && IsPiped(in.Stdin) {
		file = StdinPath
	}
	if file != "" {
		loaded, err := LoadMessages(file, in.Stdin)
		if err != nil {
			return nil, err
		}
		messages = append(messages, loaded...)
	}

	for _, text := range in.User {
		messages = append(messages, domain.Message{Role: domain.RoleUser, Content: text})
	}
	if len(in.Args) > 0 {
		messages = append(messages, domain.Message{Role: domain.RoleUser, Content: strings.Join(in.Args, " ")})
	}

	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}
	return messages, nil
}

// LoadMessages reads a conversation from path, or from stdin when path is "-".
func LoadMessages(path string, stdin io.Reader) ([]domain.Message, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinPath {
		if stdin == nil {
			return nil, fmt.Errorf("stdin unavailable")
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation %s: %w", path, err)
	}

	messages, err := ParseMessages(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse conversation %s: %w", path, err)
	}
	return messages, nil
}

// ParseMessages decodes YAML or JSON holding either a list of {role, content}
// entries or an object with a "messages" list.
func ParseMessages(data []byte) ([]domain.Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		messages, err := parseJSONMessages(trimmed)
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return messages, err
		}
		// YAML flow style, e.g. [{role: user, content: hi}]
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var messages []domain.Message
		if err := root.Decode(&messages); err != nil {
			return nil, err
		}
		return messages, checkMessages(messages)
	case yaml.MappingNode:
		var wrapper struct {
			Messages []domain.Message `yaml:"messages"`
		}
		if err := root.Decode(&wrapper); err != nil {
			return nil, err
		}
		return wrapper.Messages, checkMessages(wrapper.Messages)
	default:
		return nil, fmt.Errorf("expected a list of messages or a messages: key")
	}
}

// parseJSONMessages handles JSON documents; yaml.v3 rejects surrogate-pair
// escapes that JSON encoders emit for astral characters.
func parseJSONMessages(data []byte) ([]domain.Message, error) {
	if data[0] == '[' {
		var messages []domain.Message
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, err
		}
		return messages, checkMessages(messages)
	}
	var wrapper struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Messages, checkMessages(wrapper.Messages)
}

// checkMessages rejects entries without a role; the endpoint judges the rest.
func checkMessages(messages []domain.Message) error {
	for i, msg := range messages {
		if msg.Role == "" {
			return fmt.Errorf("message %d has no role", i)
		}
	}
	return nil
}

// IsPiped reports whether r is a non-terminal stream worth reading.
func IsPiped(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
