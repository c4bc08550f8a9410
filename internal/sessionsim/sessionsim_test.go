package sessionsim

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/lingua/internal/adapters/http/api"
	service "github.com/okian/lingua/internal/app"
	"github.com/okian/lingua/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	svc := service.New(ctx, service.WithLogger(logger.Nop()))
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGeneratePlan(t *testing.T) {
	convey.Convey("Given a generated plan", t, func() {
		p := generatePlan(5, 12)

		convey.Convey("Then user and coach turns should alternate", func() {
			convey.So(p.Turns, convey.ShouldHaveLength, 10)
			for i, turn := range p.Turns {
				if i%2 == 0 {
					convey.So(turn.Who, convey.ShouldEqual, "user")
				} else {
					convey.So(turn.Who, convey.ShouldEqual, "coach")
				}
			}
		})

		convey.Convey("Then user answers should respect the word limit", func() {
			for _, turn := range p.Turns {
				if turn.Who == "user" {
					n := len(strings.Fields(turn.Text))
					convey.So(n, convey.ShouldBeBetweenOrEqual, 1, 12)
				}
			}
		})

		convey.Convey("Then every key should be unique", func() {
			seen := map[string]bool{}
			for _, turn := range p.Turns {
				convey.So(seen[turn.Key], convey.ShouldBeFalse)
				seen[turn.Key] = true
			}
			convey.So(p.Topic, convey.ShouldNotBeEmpty)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		srv := newTestServer(t)
		cfg := &Config{
			BaseURL:  srv.URL,
			Sessions: 30,
			Turns:    3,
			Words:    25,
			Workers:  6,
			Timeout:  5 * time.Second,
		}

		convey.Convey("When the simulation runs", func() {
			stats, err := Run(context.Background(), cfg)

			convey.Convey("Then every session should verify", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.SessionsCompleted, convey.ShouldEqual, 30)
				convey.So(stats.SessionsFailed, convey.ShouldEqual, 0)
				convey.So(stats.ScoreMismatches, convey.ShouldEqual, 0)
				convey.So(stats.TurnsSubmitted, convey.ShouldEqual, 30*6)
				convey.So(stats.TurnsReplayed, convey.ShouldEqual, 30)
				convey.So(stats.PlacementLevel, convey.ShouldNotBeEmpty)
				convey.So(stats.PlacementBand, convey.ShouldBeGreaterThanOrEqualTo, 4.5)
			})
		})

		convey.Convey("When zero turns are planned", func() {
			cfg.Turns = 0
			cfg.Sessions = 3
			stats, err := Run(context.Background(), cfg)

			convey.Convey("Then sessions should still score the base value", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.SessionsCompleted, convey.ShouldEqual, 3)
				convey.So(stats.TurnsReplayed, convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a service that scores wrongly", t, func() {
		upstream := newTestServer(t)
		mux := http.NewServeMux()
		mux.HandleFunc("POST /session/{id}/end", func(w http.ResponseWriter, r *http.Request) {
			resp, err := http.Post(upstream.URL+r.URL.Path, "application/json", http.NoBody)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			defer resp.Body.Close()
			var body map[string]any
			_ = json.NewDecoder(resp.Body).Decode(&body)
			body["score"] = 101
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(body)
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			req, _ := http.NewRequestWithContext(r.Context(), r.Method, upstream.URL+r.URL.Path, r.Body)
			req.Header = r.Header.Clone()
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			defer resp.Body.Close()
			w.WriteHeader(resp.StatusCode)
			var body json.RawMessage
			_ = json.NewDecoder(resp.Body).Decode(&body)
			_, _ = w.Write(body)
		})
		proxy := httptest.NewServer(mux)
		defer proxy.Close()

		convey.Convey("Then the run should report score mismatches", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: proxy.URL, Sessions: 4, Turns: 1, Workers: 2})
			convey.So(errors.Is(err, ErrVerification), convey.ShouldBeTrue)
			convey.So(stats.ScoreMismatches, convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given an unreachable service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		convey.Convey("Then the health check should fail", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "health check")
		})
	})
}

func TestVerifySession(t *testing.T) {
	convey.Convey("Given a plan with one user turn", t, func() {
		p := plan{Turns: []plannedTurn{
			{Who: "user", Text: "one two three"},
			{Who: "coach", Text: "why?"},
		}}
		turns := []turnResponse{{Who: "user", Text: "one two three"}, {Who: "coach", Text: "why?"}}
		ended := endResponse{Score: 45, Turns: turns}

		convey.Convey("Then a matching result should verify", func() {
			err := verifySession(p, ended, sessionResponse{State: "ended", Turns: turns})
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("Then a duplicated turn should be reported", func() {
			dup := append([]turnResponse{turns[0]}, turns...)
			err := verifySession(p, ended, sessionResponse{State: "ended", Turns: dup})
			convey.So(errors.Is(err, ErrVerification), convey.ShouldBeTrue)
		})

		convey.Convey("Then an active session should be reported", func() {
			err := verifySession(p, ended, sessionResponse{State: "active", Turns: turns})
			convey.So(errors.Is(err, ErrVerification), convey.ShouldBeTrue)
		})

		convey.Convey("Then a wrong score should be reported", func() {
			ended.Score = 50
			err := verifySession(p, ended, sessionResponse{State: "ended", Turns: turns})
			convey.So(errors.Is(err, ErrVerification), convey.ShouldBeTrue)
		})
	})
}
