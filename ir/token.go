// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

// Token is an operator of the grammar.
type Token int

const (
	// ILLEGAL is the zero token.
	ILLEGAL Token = iota

	// ASSIGN is =.
	ASSIGN
	// ADDASSIGN is the fused accumulate +=.
	ADDASSIGN

	// BCASTASSIGN is the broadcast assignment .=.
	BCASTASSIGN
	// BCASTADD is .+=.
	BCASTADD
	// BCASTSUB is .-=.
	BCASTSUB
	// BCASTMUL is .*=.
	BCASTMUL
	// BCASTQUO is ./=.
	BCASTQUO

	// ADD is the elementwise binary +.
	ADD
	// SUB is the elementwise binary -.
	SUB
	// MUL is the elementwise binary *.
	MUL
	// QUO is the elementwise binary /.
	QUO
	// CROSS is the matrix-multiply operator ×.
	CROSS
)

var tokenStrings = map[Token]string{
	ILLEGAL:     "<illegal>",
	ASSIGN:      "=",
	ADDASSIGN:   "+=",
	BCASTASSIGN: ".=",
	BCASTADD:    ".+=",
	BCASTSUB:    ".-=",
	BCASTMUL:    ".*=",
	BCASTQUO:    "./=",
	ADD:         "+",
	SUB:         "-",
	MUL:         "*",
	QUO:         "/",
	CROSS:       "×",
}

// String returns the source spelling of the token.
func (t Token) String() string {
	s, ok := tokenStrings[t]
	if !ok {
		return "<illegal>"
	}
	return s
}

// IsBroadcastAssign reports whether the token belongs to the broadcast-assign
// family.
func (t Token) IsBroadcastAssign() bool {
	switch t {
	case BCASTASSIGN, BCASTADD, BCASTSUB, BCASTMUL, BCASTQUO:
		return true
	}
	return false
}

// Elementwise returns the elementwise binary operator a compound
// broadcast-assign token reduces to, or ILLEGAL for tokens with none.
func (t Token) Elementwise() Token {
	switch t {
	case BCASTADD:
		return ADD
	case BCASTSUB:
		return SUB
	case BCASTMUL:
		return MUL
	case BCASTQUO:
		return QUO
	}
	return ILLEGAL
}
