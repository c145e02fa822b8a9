package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/nourish/internal/adapters/http/api"
	"github.com/okian/nourish/internal/adapters/repository"
	"github.com/okian/nourish/internal/domain/encoding"
	"github.com/okian/nourish/internal/domain/mealtext"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDeps implements api.Dependencies with canned behavior for tests.
type fakeDeps struct {
	mu sync.Mutex

	seen     map[string]bool
	enqueued []model.IngestEvent
	full     bool

	assessment model.Assessment
	assessErr  error

	extractor mealtext.Extractor

	records map[string]model.BeneficiaryRecord
	entries []api.Entry
	stats   types.DashboardStats
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		seen:    make(map[string]bool),
		records: make(map[string]model.BeneficiaryRecord),
		assessment: model.Assessment{
			RiskScore:       47.3,
			RiskCategory:    model.RiskMedium,
			Confidence:      67.2,
			Recommendations: []string{"⚡ Monitor closely - recheck within 14 days"},
			Timestamp:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		extractor: mealtext.NewKeywordExtractor(),
	}
}

func (f *fakeDeps) SeenAndRecord(_ context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[id] {
		return true
	}
	f.seen[id] = true
	return false
}

func (f *fakeDeps) Unrecord(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, id)
}

func (f *fakeDeps) Size() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.seen))
}

func (f *fakeDeps) Enqueue(_ context.Context, e model.IngestEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.enqueued = append(f.enqueued, e)
	return true
}

func (f *fakeDeps) Assess(_ context.Context, _ model.AssessmentInput) (model.Assessment, error) {
	if f.assessErr != nil {
		return model.Assessment{}, f.assessErr
	}
	return f.assessment, nil
}

func (f *fakeDeps) ExtractMeals(ctx context.Context, text string) (mealtext.Extraction, error) {
	return f.extractor.Extract(ctx, text)
}

func (f *fakeDeps) List(_ context.Context, category model.RiskCategory, limit int) ([]model.BeneficiaryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.BeneficiaryRecord
	for _, rec := range f.records {
		if category != "" && rec.RiskCategory != category {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDeps) Get(_ context.Context, id string) (model.BeneficiaryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return model.BeneficiaryRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeDeps) TopRisk(_ context.Context, n int) ([]api.Entry, error) {
	if n > len(f.entries) {
		n = len(f.entries)
	}
	return f.entries[:n], nil
}

func (f *fakeDeps) DashboardStats(_ context.Context) (types.DashboardStats, error) {
	return f.stats, nil
}

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"queue_size": 0, "beneficiaries": len(f.records)}
}

func newTestServer(deps *fakeDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, 1000).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(url string, body any) (*http.Response, error) {
	buf, _ := json.Marshal(body)
	return http.Post(url, "application/json", bytes.NewReader(buf))
}

func decode(resp *http.Response, into any) {
	defer resp.Body.Close()
	So(json.NewDecoder(resp.Body).Decode(into), ShouldBeNil)
}

func validPredictBody() map[string]any {
	return map[string]any{
		"age_group":             "3-5 years",
		"gender":                "Female",
		"region":                "Bihar",
		"meals_per_day":         3,
		"food_diversity_score":  5,
		"protein_intake_g":      45.0,
		"calorie_intake_kcal":   1400.0,
		"attendance_rate":       0.9,
		"days_since_last_check": 5,
	}
}

func TestPredictEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When posting a valid prediction request", func() {
			resp, err := postJSON(srv.URL+"/predict", validPredictBody())

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out map[string]any
			decode(resp, &out)

			Convey("Then the response should carry the assessment fields", func() {
				So(out["risk_score"], ShouldEqual, 47.3)
				So(out["risk_category"], ShouldEqual, "Medium")
				So(out["confidence"], ShouldEqual, 67.2)
				So(out["recommendations"], ShouldResemble, []any{"⚡ Monitor closely - recheck within 14 days"})
				So(out["timestamp"], ShouldEqual, "2026-08-01T12:00:00Z")
			})
		})

		Convey("When the body is not JSON", func() {
			resp, err := http.Post(srv.URL+"/predict", "application/json", bytes.NewBufferString("{nope"))

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			var out map[string]any
			decode(resp, &out)
			So(out["code"], ShouldEqual, "bad_request")
		})

		Convey("When a required field is missing", func() {
			body := validPredictBody()
			delete(body, "age_group")

			resp, err := postJSON(srv.URL+"/predict", body)

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the attendance rate is out of range", func() {
			body := validPredictBody()
			body["attendance_rate"] = 1.5

			resp, err := postJSON(srv.URL+"/predict", body)

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the age group is outside the closed enum", func() {
			body := validPredictBody()
			body["age_group"] = "19-25 years"

			resp, err := postJSON(srv.URL+"/predict", body)

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			var out map[string]any
			decode(resp, &out)
			So(out["code"], ShouldEqual, "bad_request")
		})

		Convey("When the region was never seen at fit time", func() {
			deps.assessErr = &encoding.UnknownCategoryError{Field: "region", Value: "Atlantis"}

			resp, err := postJSON(srv.URL+"/predict", validPredictBody())

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)

			var out map[string]any
			decode(resp, &out)
			So(out["code"], ShouldEqual, "unknown_category")
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(srv.URL + "/predict")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			resp.Body.Close()
		})
	})
}

func TestChatEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When posting a meal description", func() {
			resp, err := postJSON(srv.URL+"/chat", map[string]any{"user_message": "I ate rice and dal today"})

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out map[string]any
			decode(resp, &out)

			Convey("Then the extraction should be reflected in the response", func() {
				So(out["detected_meals"], ShouldResemble, []any{"rice", "dal"})
				So(out["food_groups"], ShouldResemble, []any{"cereals", "pulses"})
				So(out["diversity_score"], ShouldEqual, 2)
				So(out["message"], ShouldEqual, "I detected 2 food items covering 2 food groups.")
				So(out["suggestion"], ShouldEqual, "Try to add more variety - include vegetables, fruits, or protein sources.")
			})
		})

		Convey("When the message is missing", func() {
			resp, err := postJSON(srv.URL+"/chat", map[string]any{})

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func validBeneficiaryBody() map[string]any {
	body := validPredictBody()
	body["beneficiary_id"] = "BEN00042"
	body["name"] = "Asha Kumari"
	return body
}

func TestBeneficiariesIngest(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When posting a new beneficiary", func() {
			body := validBeneficiaryBody()
			body["event_id"] = "evt-1"

			resp, err := postJSON(srv.URL+"/beneficiaries", body)

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

			var ack map[string]any
			decode(resp, &ack)
			So(ack["status"], ShouldEqual, "accepted")
			So(ack["duplicate"], ShouldEqual, false)

			Convey("Then the ingest event should be enqueued", func() {
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].EventID, ShouldEqual, "evt-1")
				So(deps.enqueued[0].Record.ID, ShouldEqual, "BEN00042")
				So(deps.enqueued[0].Record.Name, ShouldEqual, "Asha Kumari")
			})

			Convey("And posting the same event again", func() {
				resp2, err2 := postJSON(srv.URL+"/beneficiaries", body)

				So(err2, ShouldBeNil)
				So(resp2.StatusCode, ShouldEqual, http.StatusOK)

				var ack2 map[string]any
				decode(resp2, &ack2)

				Convey("Then it should be acknowledged as a duplicate without enqueueing", func() {
					So(ack2["status"], ShouldEqual, "duplicate")
					So(ack2["duplicate"], ShouldEqual, true)
					So(len(deps.enqueued), ShouldEqual, 1)
				})
			})
		})

		Convey("When no event ID is supplied", func() {
			resp, err := postJSON(srv.URL+"/beneficiaries", validBeneficiaryBody())

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

			Convey("Then the server should mint one", func() {
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].EventID, ShouldNotBeEmpty)
			})
		})

		Convey("When the queue is saturated", func() {
			deps.full = true
			body := validBeneficiaryBody()
			body["event_id"] = "evt-pressure"

			resp, err := postJSON(srv.URL+"/beneficiaries", body)

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)

			var out map[string]any
			decode(resp, &out)
			So(out["code"], ShouldEqual, "backpressure")

			Convey("Then the event ID should be released for retry", func() {
				So(deps.seen["evt-pressure"], ShouldBeFalse)

				deps.full = false
				resp2, err2 := postJSON(srv.URL+"/beneficiaries", body)
				So(err2, ShouldBeNil)
				So(resp2.StatusCode, ShouldEqual, http.StatusAccepted)
				resp2.Body.Close()
			})
		})

		Convey("When the beneficiary ID is missing", func() {
			body := validBeneficiaryBody()
			delete(body, "beneficiary_id")

			resp, err := postJSON(srv.URL+"/beneficiaries", body)

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func seedRecord(id string, score float64, category model.RiskCategory) model.BeneficiaryRecord {
	return model.BeneficiaryRecord{
		ID:           id,
		Name:         "Beneficiary " + id,
		AgeGroup:     model.AgeGroup3To5,
		Gender:       model.GenderMale,
		Region:       "Bihar",
		RiskScore:    score,
		RiskCategory: category,
		LastUpdated:  time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBeneficiariesRead(t *testing.T) {
	Convey("Given a server with stored records", t, func() {
		deps := newFakeDeps()
		deps.records["BEN00001"] = seedRecord("BEN00001", 82, model.RiskHigh)
		deps.records["BEN00002"] = seedRecord("BEN00002", 12, model.RiskLow)
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When listing all beneficiaries", func() {
			resp, err := http.Get(srv.URL + "/beneficiaries")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out []map[string]any
			decode(resp, &out)
			So(len(out), ShouldEqual, 2)
		})

		Convey("When filtering by risk category", func() {
			resp, err := http.Get(srv.URL + "/beneficiaries?risk_category=High")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out []map[string]any
			decode(resp, &out)
			So(len(out), ShouldEqual, 1)
			So(out[0]["beneficiary_id"], ShouldEqual, "BEN00001")
			So(out[0]["risk_score"], ShouldEqual, 82)
			So(out[0]["last_updated"], ShouldEqual, "2026-08-01T09:00:00Z")
		})

		Convey("When the category filter is not a known band", func() {
			resp, err := http.Get(srv.URL + "/beneficiaries?risk_category=Critical")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit is malformed", func() {
			resp, err := http.Get(srv.URL + "/beneficiaries?limit=zero")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp.Body.Close()
		})

		Convey("When the limit exceeds the cap", func() {
			resp, err := http.Get(srv.URL + "/beneficiaries?limit=99999")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			var out map[string]any
			decode(resp, &out)
			So(out["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When fetching one beneficiary by ID", func() {
			resp, err := http.Get(srv.URL + "/beneficiaries/BEN00001")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out map[string]any
			decode(resp, &out)
			So(out["beneficiary_id"], ShouldEqual, "BEN00001")
			So(out["risk_category"], ShouldEqual, "High")
		})

		Convey("When the beneficiary does not exist", func() {
			resp, err := http.Get(srv.URL + "/beneficiaries/BEN99999")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)

			var out map[string]any
			decode(resp, &out)
			So(out["code"], ShouldEqual, "not_found")
		})
	})
}

func TestTriageEndpoint(t *testing.T) {
	Convey("Given a server with triage entries", t, func() {
		deps := newFakeDeps()
		for i := 0; i < 5; i++ {
			deps.entries = append(deps.entries, api.Entry{
				Rank:          i + 1,
				BeneficiaryID: fmt.Sprintf("BEN%05d", i+1),
				RiskScore:     90 - float64(i)*10,
				RiskCategory:  "High",
				Region:        "Bihar",
			})
		}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When requesting the top entries", func() {
			resp, err := http.Get(srv.URL + "/triage?limit=3")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out []map[string]any
			decode(resp, &out)
			So(len(out), ShouldEqual, 3)
			So(out[0]["rank"], ShouldEqual, 1)
			So(out[0]["beneficiary_id"], ShouldEqual, "BEN00001")
		})

		Convey("When the limit is missing", func() {
			resp, err := http.Get(srv.URL + "/triage")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp.Body.Close()
		})

		Convey("When the limit exceeds the cap", func() {
			resp, err := http.Get(srv.URL + "/triage?limit=5000")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			var out map[string]any
			decode(resp, &out)
			So(out["code"], ShouldEqual, "limit_exceeded")
		})
	})
}

func TestDashboardAndStats(t *testing.T) {
	Convey("Given a server with dashboard aggregates", t, func() {
		deps := newFakeDeps()
		deps.stats = types.DashboardStats{
			TotalBeneficiaries: 2,
			HighRiskCount:      1,
			LowRiskCount:       1,
			AvgRiskScore:       47.0,
			Regions:            []string{"Bihar"},
			RegionStats:        map[string]types.RegionStats{"Bihar": {AvgRiskScore: 47.0, Count: 2}},
			RiskByAgeGroup:     map[string]map[string]int{"3-5 years": {"High": 1, "Low": 1}},
		}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When fetching dashboard stats", func() {
			resp, err := http.Get(srv.URL + "/dashboard/stats")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out map[string]any
			decode(resp, &out)
			So(out["total_beneficiaries"], ShouldEqual, 2)
			So(out["high_risk_count"], ShouldEqual, 1)
			So(out["avg_risk_score"], ShouldEqual, 47.0)
		})

		Convey("When fetching the dashboard page", func() {
			resp, err := http.Get(srv.URL + "/dashboard")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "text/html")
			resp.Body.Close()
		})

		Convey("When fetching service stats", func() {
			resp, err := http.Get(srv.URL + "/stats")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var out map[string]any
			decode(resp, &out)
			So(out, ShouldContainKey, "queue_size")
			So(out, ShouldContainKey, "beneficiaries")
		})

		Convey("When probing the health endpoint", func() {
			resp, err := http.Get(srv.URL + "/healthz")

			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			resp.Body.Close()
		})
	})
}
