package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a backend-assigned task identifier. The backend may use numbers or
// strings; the JSON kind is kept so a record written back is unchanged.
type ID struct {
	text    string
	numeric bool
}

// StringID returns an ID carried as a JSON string.
func StringID(s string) ID { return ID{text: s} }

// NumberID returns an ID carried as a JSON number.
func NumberID(n int64) ID { return ID{text: fmt.Sprint(n), numeric: true} }

// ParseID builds an ID from user input such as a CLI argument. Input that
// is a canonical integer ("5", not "05" or "+5") is treated as a number.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return ID{text: s, numeric: true}
	}
	return ID{text: s}
}

func (id ID) String() string { return id.text }
func (id ID) IsZero() bool   { return id.text == "" }

// Equal compares by textual form, so "5" and 5 are the same task.
func (id ID) Equal(other ID) bool { return id.text == other.text }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		*id = ID{text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = ID{text: n.String(), numeric: true}
	return nil
}

// Task is the domain model for a todo entry as stored by the backend.
// Fields the client does not know about are kept in extra and written
// back on a full-record replace.
type Task struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`

	extra map[string]json.RawMessage
}

var knownFields = map[string]bool{"id": true, "title": true, "completed": true}

// Extra returns a field the backend sent that Task does not model.
func (t Task) Extra(name string) (json.RawMessage, bool) {
	v, ok := t.extra[name]
	return v, ok
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.extra)+3)
	for k, v := range t.extra {
		out[k] = v
	}
	if !t.ID.IsZero() {
		b, err := t.ID.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out["id"] = b
	}
	title, err := json.Marshal(t.Title)
	if err != nil {
		return nil, err
	}
	out["title"] = title
	out["completed"] = json.RawMessage(fmt.Sprint(t.Completed))
	return json.Marshal(out)
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	var out Task
	if v, ok := raw["id"]; ok {
		if err := out.ID.UnmarshalJSON(v); err != nil {
			return err
		}
	}
	if v, ok := raw["title"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &out.Title); err != nil {
			return fmt.Errorf("task title: %w", err)
		}
	}
	if v, ok := raw["completed"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &out.Completed); err != nil {
			return fmt.Errorf("task completed: %w", err)
		}
	}
	for k, v := range raw {
		if knownFields[k] {
			continue
		}
		if out.extra == nil {
			out.extra = make(map[string]json.RawMessage)
		}
		out.extra[k] = v
	}
	*t = out
	return nil
}

// Stats counts completed and pending tasks.
func Stats(tasks []Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
