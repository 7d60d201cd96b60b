/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package mailbox holds letters that have been sent but not yet
// received.
//
// A Mailbox is shared by every agent in a crew.  Put and Take are
// each a single critical section, and Take removes the first pending
// letter (in arrival order) that matches its query.
package mailbox

import (
	"sync"

	"github.com/Comcast/lcc/core"
)

// Op says what happened to a letter.
type Op string

const (
	Added   Op = "added"
	Removed Op = "removed"
)

// Observer hears about every change.  It's called with the Mailbox
// lock held, so it must not call back into the Mailbox.
type Observer func(op Op, l *core.Letter)

// Mailbox is the shared store of pending letters.
type Mailbox struct {
	sync.Mutex

	letters []*core.Letter

	// changed is closed (and replaced) whenever a letter is
	// added.
	changed chan struct{}

	observers []Observer
}

// New makes an empty Mailbox.
func New() *Mailbox {
	return &Mailbox{
		letters: make([]*core.Letter, 0, 32),
		changed: make(chan struct{}),
	}
}

// Observe adds an Observer.
func (m *Mailbox) Observe(o Observer) {
	m.Lock()
	m.observers = append(m.observers, o)
	m.Unlock()
}

func (m *Mailbox) notify(op Op, l *core.Letter) {
	for _, o := range m.observers {
		o(op, l)
	}
}

// Put adds the letter.  Put never blocks on a receiver.
func (m *Mailbox) Put(l *core.Letter) {
	m.Lock()
	m.letters = append(m.letters, l)
	m.notify(Added, l)
	close(m.changed)
	m.changed = make(chan struct{})
	m.Unlock()
}

// Take removes and returns the first letter whose PostData matches
// the query.
func (m *Mailbox) Take(q core.PostData) (*core.Letter, bool) {
	m.Lock()
	defer m.Unlock()

	for i, l := range m.letters {
		if !l.Matches(q) {
			continue
		}
		copy(m.letters[i:], m.letters[i+1:])
		m.letters[len(m.letters)-1] = nil
		m.letters = m.letters[:len(m.letters)-1]
		m.notify(Removed, l)
		return l, true
	}

	return nil, false
}

// Changed returns a channel that's closed the next time a letter is
// added.
func (m *Mailbox) Changed() <-chan struct{} {
	m.Lock()
	c := m.changed
	m.Unlock()
	return c
}

// Len is the number of pending letters.
func (m *Mailbox) Len() int {
	m.Lock()
	n := len(m.letters)
	m.Unlock()
	return n
}

// Snapshot returns copies of the pending letters in arrival order.
func (m *Mailbox) Snapshot() []*core.Letter {
	m.Lock()
	acc := make([]*core.Letter, len(m.letters))
	for i, l := range m.letters {
		acc[i] = l.Copy()
	}
	m.Unlock()
	return acc
}
