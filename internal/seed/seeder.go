// Package seed populates a running API with random users and tasks.
package seed

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const taskDescription = "Auto-generated task for API testing."

// Config controls a seeding run.
type Config struct {
	BaseURL   string // scheme://host:port of the API
	APIPrefix string
	Users     int
	Tasks     int
	TaskNames []string
}

// Result reports what a run created.
type Result struct {
	Users int
	Tasks int
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type createdUser struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Seeder creates random entities through the public API.
type Seeder struct {
	cfg    Config
	client *http.Client
	rng    *rand.Rand
	now    func() time.Time
	log    *zap.Logger
}

// Option customizes a Seeder.
type Option func(*Seeder)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Seeder) { s.client = c }
}

// WithRand makes runs reproducible.
func WithRand(r *rand.Rand) Option {
	return func(s *Seeder) { s.rng = r }
}

// WithClock sets the time deadlines are computed from.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

// New creates a Seeder.
func New(cfg Config, log *zap.Logger, opts ...Option) *Seeder {
	if len(cfg.TaskNames) == 0 {
		cfg.TaskNames = defaultTaskNames
	}
	s := &Seeder{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run creates the configured number of users, then tasks randomly assigned
// to them. Rejected or unreadable responses are logged and skipped.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	s.log.Info("creating users", zap.Int("count", s.cfg.Users))
	users := make([]createdUser, 0, s.cfg.Users)
	for i := 0; i < s.cfg.Users; i++ {
		first := pick(s.rng, firstNames)
		last := pick(s.rng, lastNames)

		var u createdUser
		ok, err := s.post(ctx, "/users", map[string]any{
			"name":  first + " " + last,
			"email": first + "@" + last + ".com",
		}, &u)
		if err != nil {
			return res, err
		}
		if !ok || u.ID == "" {
			continue
		}
		users = append(users, u)
	}
	res.Users = len(users)
	s.log.Info("users created", zap.Int("count", res.Users))

	s.log.Info("creating tasks", zap.Int("count", s.cfg.Tasks))
	for i := 0; i < s.cfg.Tasks; i++ {
		ok, err := s.post(ctx, "/tasks", s.randomTask(users), nil)
		if err != nil {
			return res, err
		}
		if ok {
			res.Tasks++
		}
	}

	s.log.Info("seeding complete",
		zap.Int("users", res.Users),
		zap.Int("tasks", res.Tasks),
		zap.String("url", s.cfg.BaseURL),
	)
	return res, nil
}

func (s *Seeder) randomTask(users []createdUser) map[string]any {
	assignedUser, assignedUserName := "", "unassigned"
	if s.rng.IntN(11) > 4 && len(users) > 0 {
		u := users[s.rng.IntN(len(users))]
		assignedUser, assignedUserName = u.ID, u.Name
	}

	y, m, d := s.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	deadline := today.Add(time.Duration(86400+s.rng.IntN(864000-86400+1)) * time.Second)

	return map[string]any{
		"name":             pick(s.rng, s.cfg.TaskNames),
		"description":      taskDescription,
		"deadline":         deadline.UnixMilli(),
		"completed":        s.rng.IntN(11) > 5,
		"assignedUser":     assignedUser,
		"assignedUserName": assignedUserName,
	}
}

// post sends body to the API and decodes the response data into out.
// It reports false for responses that did not create anything.
func (s *Seeder) post(ctx context.Context, path string, body any, out any) (bool, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + s.cfg.APIPrefix + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.log.Warn("could not parse response, skipping", zap.String("path", path), zap.Error(err))
		return false, nil
	}
	if resp.StatusCode != http.StatusCreated {
		s.log.Warn("request rejected, skipping",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", env.Message),
		)
		return false, nil
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			s.log.Warn("malformed response data, skipping", zap.String("path", path), zap.Error(err))
			return false, nil
		}
	}
	return true, nil
}

// LoadTaskNames reads one task name per non-blank line.
func LoadTaskNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open task names: %w", err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read task names: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no task names in %s", path)
	}
	return names, nil
}

func pick(r *rand.Rand, from []string) string {
	return from[r.IntN(len(from))]
}
