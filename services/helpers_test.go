package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"guildhall/models"
)

const fixtureRoot = "../fixtures/SLP"

var (
	aliceWallet = models.Wallet{Address: "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", Name: "Alice"}
	eveWallet   = models.Wallet{Address: "8xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", Name: "Eve"}
)

// newFixtureServer serves the checked-in fixtures under /SLP/ and counts requests.
func newFixtureServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	files := http.StripPrefix("/SLP/", http.FileServer(http.Dir(fixtureRoot)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		files.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newHTTPFixtureClient(t *testing.T) (*FixtureClient, *atomic.Int64) {
	t.Helper()
	srv, hits := newFixtureServer(t)
	source := NewHTTPSource(srv.URL+"/SLP/", srv.Client())
	return NewFixtureClient(source, nil, zap.NewNop()), hits
}

// memSource is an in-memory FixtureSource.
type memSource struct {
	mu    sync.Mutex
	files map[string][]byte
	errs  map[string]error
	calls map[string]int
}

func newMemSource(files map[string]string) *memSource {
	s := &memSource{files: map[string][]byte{}, errs: map[string]error{}, calls: map[string]int{}}
	for k, v := range files {
		s.files[k] = []byte(v)
	}
	return s
}

func (s *memSource) Resolve(p string) string { return "mem://" + p }

func (s *memSource) Fetch(_ context.Context, p string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[p]++
	if err, ok := s.errs[p]; ok {
		return nil, err
	}
	body, ok := s.files[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrFixtureNotFound)
	}
	return body, nil
}

func (s *memSource) set(p, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = []byte(body)
}

func (s *memSource) callCount(p string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[p]
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func questJSON(id, typ, status string) string {
	return fmt.Sprintf(`{"questID":%q,"guildID":"guild-1","title":"Quest %s","description":"d","type":%q,"status":%q,"phase":"create","amountToken1":10}`,
		id, id, typ, status)
}

func newQuest(id string, typ models.QuestType, status models.QuestStatus) *models.Quest {
	return &models.Quest{
		QuestID:     id,
		GuildID:     "guild-1",
		Title:       "Quest " + id,
		Description: "d",
		Type:        typ,
		Status:      status,
		Phase:       models.QuestPhaseCreate,
	}
}


// seedQuests replaces the store's list without going through a fixture source.
func seedQuests(s *QuestStore, quests ...*models.Quest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests = quests
	s.loadedAt = s.now()
}
