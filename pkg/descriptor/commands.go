// Lux
// Copyright (c) 2026 The Lux Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Lux.
//
// Lux is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lux is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lux.  If not, see <http://www.gnu.org/licenses/>.

package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Override is the command used when a pattern matches.
type Override struct {
	Cmd  string   `json:"cmd" validate:"required"`
	Args []string `json:"args,omitempty"`
}

// Pattern pairs a regular expression over the joined invocation with the
// command to run when it matches.
type Pattern struct {
	re       *regexp.Regexp
	Expr     string
	Override Override
}

// Match reports whether the pattern matches the joined invocation.
func (p Pattern) Match(invocation string) bool {
	re := p.re
	if re == nil {
		re = regexp.MustCompile(p.Expr)
	}
	return re.MatchString(invocation)
}

// NewPattern compiles a pattern.
func NewPattern(expr string, o Override) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid command pattern %q: %w", expr, err)
	}
	return Pattern{Expr: expr, re: re, Override: o}, nil
}

// Commands is the "commands" object. JSON objects are unordered in Go maps,
// so the keys are decoded by hand to keep declaration order.
type Commands []Pattern

var errNotObject = errors.New("commands must be an object")

// UnmarshalJSON implements json.Unmarshaler.
func (c *Commands) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	out := Commands{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read commands: %w", err)
		}
		expr, _ := tok.(string)

		var o Override
		if err := dec.Decode(&o); err != nil {
			return fmt.Errorf("command pattern %q: %w", expr, err)
		}
		if o.Cmd == "" {
			return fmt.Errorf("command pattern %q: missing cmd", expr)
		}
		p, err := NewPattern(expr, o)
		if err != nil {
			return err
		}
		// duplicate keys keep their first position, last value wins
		if i, dup := seen[expr]; dup {
			out[i] = p
			continue
		}
		seen[expr] = len(out)
		out = append(out, p)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}

	*c = out
	return nil
}

// MarshalJSON implements json.Marshaler, preserving order.
func (c Commands) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pattern: %w", err)
		}
		val, err := json.Marshal(p.Override)
		if err != nil {
			return nil, fmt.Errorf("failed to encode override: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
