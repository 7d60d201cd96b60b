/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package monitor provides observability gear for a running crew: a
// textual event log, sinks that ship events elsewhere (a writer,
// websocket clients, a bbolt archive, an MQTT broker), and Prometheus
// metrics.
//
// Nothing here affects how a protocol executes.
package monitor

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one line in the event log.
type Event struct {
	Seq  int64     `json:"seq"`
	Time time.Time `json:"time"`

	// Run identifies the run that the event belongs to.
	Run string `json:"run"`

	// Source is usually an agent ID or "crew".
	Source string `json:"source"`

	Text string `json:"text"`
}

func (e Event) String() string {
	return fmt.Sprintf("%d %s %s: %s", e.Seq, e.Time.Format("15:04:05.000"), e.Source, e.Text)
}

// Sink receives every Event that's added to a Log.
type Sink interface {
	Emit(e Event) error
}

// Log is an append-only event log with a line limit.  Once the limit
// is reached, the oldest events are dropped from the Log (but not
// from its sinks).
type Log struct {
	sync.Mutex

	// Run is the run ID, which is a UUID by default.
	Run string

	// Limit is the maximum number of events kept.  Zero means no
	// limit.
	Limit int

	events []Event
	seq    int64
	sinks  []Sink
	subs   map[int]chan Event
	subID  int
}

// NewLog makes a Log with a fresh run ID.
func NewLog(limit int) *Log {
	return &Log{
		Run:    uuid.New().String(),
		Limit:  limit,
		events: make([]Event, 0, 64),
		subs:   make(map[int]chan Event),
	}
}

// AddSink adds a Sink.  Only subsequent events are emitted to it.
func (l *Log) AddSink(s Sink) {
	l.Lock()
	l.sinks = append(l.sinks, s)
	l.Unlock()
}

// Add appends an event.
func (l *Log) Add(source, text string) Event {
	l.Lock()
	defer l.Unlock()

	l.seq++
	e := Event{
		Seq:    l.seq,
		Time:   time.Now().UTC(),
		Run:    l.Run,
		Source: source,
		Text:   text,
	}

	l.events = append(l.events, e)
	if 0 < l.Limit && l.Limit < len(l.events) {
		n := len(l.events) - l.Limit
		copy(l.events, l.events[n:])
		l.events = l.events[:l.Limit]
	}

	for _, s := range l.sinks {
		if err := s.Emit(e); err != nil {
			log.Printf("monitor sink %T error %s", s, err)
		}
	}

	for id, c := range l.subs {
		select {
		case c <- e:
		default:
			log.Printf("monitor subscriber %d blocked", id)
		}
	}

	return e
}

// Addf is Add with formatting.
func (l *Log) Addf(source, format string, args ...interface{}) Event {
	return l.Add(source, fmt.Sprintf(format, args...))
}

// Events returns a copy of the events in the Log.
func (l *Log) Events() []Event {
	l.Lock()
	acc := make([]Event, len(l.events))
	copy(acc, l.events)
	l.Unlock()
	return acc
}

// Len is the number of events in the Log.
func (l *Log) Len() int {
	l.Lock()
	n := len(l.events)
	l.Unlock()
	return n
}

// Subscribe returns a channel that gets subsequent events.  A
// subscriber that doesn't keep up misses events.  Call the returned
// function to unsubscribe.
func (l *Log) Subscribe(buf int) (<-chan Event, func()) {
	c := make(chan Event, buf)

	l.Lock()
	l.subID++
	id := l.subID
	l.subs[id] = c
	l.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			l.Lock()
			delete(l.subs, id)
			l.Unlock()
			close(c)
		})
	}
}
