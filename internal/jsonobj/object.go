// Package jsonobj provides an ordered JSON object that keeps the raw bytes
// of every member it was decoded from.
//
// Claude Code owns most of ~/.claude.json. Members we never touch must be
// written back exactly as they were read, in the same position, so the
// object stores each value as a json.RawMessage and only re-encodes the
// members a caller replaced.
package jsonobj

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned when the decoded value is not a JSON object.
var ErrNotObject = errors.New("json value is not an object")

type member struct {
	key   string
	raw   json.RawMessage
	dirty bool
}

// Object is an ordered set of JSON members.
// The zero value is an empty object ready to use.
type Object struct {
	members []member
}

// Parse decodes data into an Object. The top-level value must be an object.
func Parse(data []byte) (*Object, error) {
	o := &Object{}
	if err := o.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return o, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	o.members = o.members[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read member key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("read member %q: %w", key, err)
		}
		o.setRaw(key, raw, false)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read object end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after object")
	}
	return nil
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns member names in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.key
	}
	return keys
}

// Has reports whether the member exists.
func (o *Object) Has(key string) bool {
	return o.index(key) >= 0
}

// Raw returns the raw bytes of a member.
func (o *Object) Raw(key string) (json.RawMessage, bool) {
	i := o.index(key)
	if i < 0 {
		return nil, false
	}
	return o.members[i].raw, true
}

// IsNull reports whether the member is absent or holds JSON null.
func (o *Object) IsNull(key string) bool {
	raw, ok := o.Raw(key)
	return !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Get decodes a member into v. It returns false if the member is absent.
func (o *Object) Get(key string, v any) (bool, error) {
	raw, ok := o.Raw(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// String returns a member as a string. Non-string values yield "".
func (o *Object) String(key string) string {
	var s string
	if ok, err := o.Get(key, &s); !ok || err != nil {
		return ""
	}
	return s
}

// Set encodes v and stores it under key. Existing members keep their
// position; new members are appended.
func (o *Object) Set(key string, v any) error {
	raw, err := marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	o.setRaw(key, raw, true)
	return nil
}

// Delete removes a member.
func (o *Object) Delete(key string) {
	i := o.index(key)
	if i < 0 {
		return
	}
	o.members = append(o.members[:i], o.members[i+1:]...)
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := &Object{members: make([]member, len(o.members))}
	for i, m := range o.members {
		c.members[i] = member{key: m.key, raw: append(json.RawMessage(nil), m.raw...), dirty: m.dirty}
	}
	return c
}

// MarshalJSON implements json.Marshaler. The output is compact apart from
// untouched members, which keep their original bytes.
func (o *Object) MarshalJSON() ([]byte, error) {
	return o.encode("", "")
}

// MarshalIndent encodes the object with one member per line. Members that
// were set are indented to fit; untouched members are emitted verbatim.
func (o *Object) MarshalIndent(prefix, indent string) ([]byte, error) {
	return o.encode(prefix, indent)
}

func (o *Object) encode(prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if o.Len() == 0 {
		return []byte("{}"), nil
	}

	pretty := indent != ""
	buf.WriteByte('{')
	for i, m := range o.members {
		if i > 0 {
			buf.WriteByte(',')
		}
		if pretty {
			buf.WriteByte('\n')
			buf.WriteString(prefix + indent)
		}

		key, err := marshal(m.key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", m.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		if pretty {
			buf.WriteByte(' ')
		}

		if !m.dirty || !pretty {
			buf.Write(m.raw)
			continue
		}
		var ind bytes.Buffer
		if err := json.Indent(&ind, m.raw, prefix+indent, indent); err != nil {
			return nil, fmt.Errorf("indent %q: %w", m.key, err)
		}
		buf.Write(ind.Bytes())
	}
	if pretty {
		buf.WriteByte('\n')
		buf.WriteString(prefix)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshal is json.Marshal without HTML escaping, so strings such as
// "R&D <lab>" are written the way Claude Code writes them.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (o *Object) index(key string) int {
	if o == nil {
		return -1
	}
	for i, m := range o.members {
		if m.key == key {
			return i
		}
	}
	return -1
}

func (o *Object) setRaw(key string, raw json.RawMessage, dirty bool) {
	if i := o.index(key); i >= 0 {
		o.members[i].raw = raw
		o.members[i].dirty = dirty
		return
	}
	o.members = append(o.members, member{key: key, raw: raw, dirty: dirty})
}
