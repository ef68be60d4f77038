package core

import (
	"sync"
	"time"
)

// Entity names one piece of state owned by the Store.
type Entity int

const (
	EntityStatus Entity = iota
	EntityURLs
	EntityTiming
	EntityLogs
	EntitySystemInfo
	entityCount
)

func (e Entity) String() string {
	switch e {
	case EntityStatus:
		return "status"
	case EntityURLs:
		return "urls"
	case EntityTiming:
		return "timing"
	case EntityLogs:
		return "logs"
	case EntitySystemInfo:
		return "system-info"
	default:
		return "unknown"
	}
}

// Ticket orders refresh responses for one entity. A response committed with
// a ticket older than the last committed one is dropped.
type Ticket struct {
	entity Entity
	seq    uint64
}

// Snapshot is a deep copy of the store. Nil / false fields mean the entity
// has never been loaded.
type Snapshot struct {
	Status          *ServiceStatus
	StatusCheckedAt time.Time

	URLs       []MonitoredURL
	URLsLoaded bool

	Timing *TimingConfig

	Logs       LogTail
	LogsLoaded bool

	SystemInfo       string
	SystemInfoLoaded bool
}

// OnlineCount returns how many URLs the service last saw online.
func (s Snapshot) OnlineCount() int {
	n := 0
	for _, u := range s.URLs {
		if u.Status == StatusOnline {
			n++
		}
	}
	return n
}

// FindURL looks an entry up by key.
func (s Snapshot) FindURL(url string) (MonitoredURL, bool) {
	for _, u := range s.URLs {
		if u.URL == url {
			return u, true
		}
	}
	return MonitoredURL{}, false
}

// Store is the single source of truth for rendering.
type Store struct {
	mu sync.RWMutex

	status          *ServiceStatus
	statusCheckedAt time.Time
	urls            []MonitoredURL
	urlsLoaded      bool
	timing          *TimingConfig
	logs            LogTail
	logsLoaded      bool
	systemInfo      string
	systemLoaded    bool

	issued  [entityCount]uint64
	applied [entityCount]uint64

	listeners []func(Entity)
}

func NewStore() *Store {
	return &Store{}
}

// Subscribe registers fn to run after every committed mutation.
func (s *Store) Subscribe(fn func(Entity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Begin issues a ticket for a refresh of e that is about to start.
func (s *Store) Begin(e Entity) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[e]++
	return Ticket{entity: e, seq: s.issued[e]}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		StatusCheckedAt:  s.statusCheckedAt,
		URLsLoaded:       s.urlsLoaded,
		LogsLoaded:       s.logsLoaded,
		SystemInfo:       s.systemInfo,
		SystemInfoLoaded: s.systemLoaded,
	}
	if s.status != nil {
		st := *s.status
		snap.Status = &st
	}
	if s.timing != nil {
		t := *s.timing
		snap.Timing = &t
	}
	if s.urls != nil {
		snap.URLs = append([]MonitoredURL(nil), s.urls...)
	}
	if s.logs != nil {
		snap.Logs = append(LogTail(nil), s.logs...)
	}
	return snap
}

func (s *Store) SetStatus(t Ticket, st ServiceStatus, checkedAt time.Time) bool {
	return s.commit(t, func() {
		s.status = &st
		s.statusCheckedAt = checkedAt
	})
}

func (s *Store) SetURLs(t Ticket, urls []MonitoredURL) bool {
	deduped := dedupeURLs(urls)
	return s.commit(t, func() {
		s.urls = deduped
		s.urlsLoaded = true
	})
}

func (s *Store) SetTiming(t Ticket, cfg TimingConfig) bool {
	return s.commit(t, func() {
		s.timing = &cfg
	})
}

func (s *Store) SetLogs(t Ticket, logs LogTail) bool {
	cp := append(LogTail{}, logs...)
	return s.commit(t, func() {
		s.logs = cp
		s.logsLoaded = true
	})
}

func (s *Store) SetSystemInfo(t Ticket, info string) bool {
	return s.commit(t, func() {
		s.systemInfo = info
		s.systemLoaded = true
	})
}

// UpsertURL inserts u or replaces the entry with the same key in place.
// Outstanding URL refreshes become stale.
func (s *Store) UpsertURL(u MonitoredURL) {
	s.localURLMutation(func() {
		for i := range s.urls {
			if s.urls[i].URL == u.URL {
				s.urls[i] = u
				return
			}
		}
		s.urls = append(s.urls, u)
	})
}

// DeleteURL removes the entry keyed by url, if present.
func (s *Store) DeleteURL(url string) {
	s.localURLMutation(func() {
		kept := make([]MonitoredURL, 0, len(s.urls))
		for _, u := range s.urls {
			if u.URL != url {
				kept = append(kept, u)
			}
		}
		s.urls = kept
	})
}

func (s *Store) localURLMutation(apply func()) {
	s.mu.Lock()
	s.issued[EntityURLs]++
	s.applied[EntityURLs] = s.issued[EntityURLs]
	apply()
	s.urlsLoaded = true
	listeners := append([]func(Entity){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(EntityURLs)
	}
}

func (s *Store) commit(t Ticket, apply func()) bool {
	s.mu.Lock()
	if t.seq <= s.applied[t.entity] {
		s.mu.Unlock()
		return false
	}
	s.applied[t.entity] = t.seq
	apply()
	listeners := append([]func(Entity){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(t.entity)
	}
	return true
}

func dedupeURLs(urls []MonitoredURL) []MonitoredURL {
	out := make([]MonitoredURL, 0, len(urls))
	index := make(map[string]int, len(urls))
	for _, u := range urls {
		if i, ok := index[u.URL]; ok {
			out[i] = u
			continue
		}
		index[u.URL] = len(out)
		out = append(out, u)
	}
	return out
}
