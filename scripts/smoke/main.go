// Command smoke drives one full grade-entry flow against a running API
// instance: register, login, create a subject with a grading scheme, enroll
// a student, enter scores and verify the computed final and the subject
// statistics. Exits non-zero on the first mismatch.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL including prefix")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	c := &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("smoke+%d@example.test", suffix)

	step("register", func() error {
		return c.do(http.MethodPost, "/auth/register", map[string]interface{}{
			"name":     "Smoke",
			"surname":  "Test",
			"email":    email,
			"password": "smoke-test-1234",
		}, nil)
	})

	step("login", func() error {
		var login struct {
			AccessToken string `json:"access_token"`
		}
		if err := c.do(http.MethodPost, "/auth/login", map[string]interface{}{
			"email":    email,
			"password": "smoke-test-1234",
		}, &login); err != nil {
			return err
		}
		if login.AccessToken == "" {
			return fmt.Errorf("empty access token")
		}
		c.token = login.AccessToken
		return nil
	})

	var subjectID string
	step("create subject", func() error {
		var subject struct {
			ID string `json:"id"`
		}
		if err := c.do(http.MethodPost, "/subjects", map[string]interface{}{
			"name":             fmt.Sprintf("Smoke %d", suffix),
			"level":            "SMR",
			"year":             1,
			"weekly_sessions":  5,
			"evaluation_count": 1,
		}, &subject); err != nil {
			return err
		}
		subjectID = subject.ID
		return nil
	})

	step("configure grading", func() error {
		return c.do(http.MethodPut, "/subjects/"+subjectID+"/config", map[string]interface{}{
			"evaluations": []map[string]interface{}{{
				"id":     "ev1",
				"number": 1,
				"weight": 100,
				"tests": []map[string]interface{}{
					{"id": "t1", "name": "Exame", "weight": 60},
					{"id": "t2", "name": "Practica", "weight": 40},
				},
			}},
		}, nil)
	})

	var studentID string
	step("create student", func() error {
		var student struct {
			ID string `json:"id"`
		}
		if err := c.do(http.MethodPost, "/students", map[string]interface{}{
			"name":    "Ana",
			"surname": "Souto",
			"email":   fmt.Sprintf("ana+%d@example.test", suffix),
		}, &student); err != nil {
			return err
		}
		studentID = student.ID
		return nil
	})

	step("enroll", func() error {
		return c.do(http.MethodPost, "/enrollments", map[string]interface{}{
			"student_id": studentID,
			"subject_id": subjectID,
		}, nil)
	})

	step("init grades", func() error {
		var result struct {
			Created int `json:"created"`
		}
		if err := c.do(http.MethodPost, "/grades/subjects/"+subjectID+"/init", nil, &result); err != nil {
			return err
		}
		if result.Created != 1 {
			return fmt.Errorf("expected 1 grade record created, got %d", result.Created)
		}
		return nil
	})

	// 8*0.6 + 6*0.4 = 7.2
	step("save grades", func() error {
		var grade struct {
			FinalGrade *float64 `json:"final_grade"`
		}
		if err := c.do(http.MethodPut, "/grades/students/"+studentID+"/subjects/"+subjectID, map[string]interface{}{
			"evaluations": []map[string]interface{}{{
				"evaluation_id": "ev1",
				"test_grades": []map[string]interface{}{
					{"test_id": "t1", "value": 8},
					{"test_id": "t2", "value": 6},
				},
			}},
		}, &grade); err != nil {
			return err
		}
		if grade.FinalGrade == nil {
			return fmt.Errorf("final grade not computed")
		}
		if math.Abs(*grade.FinalGrade-7.2) > 0.01 {
			return fmt.Errorf("expected final grade 7.2, got %.2f", *grade.FinalGrade)
		}
		return nil
	})

	step("subject stats", func() error {
		var stats struct {
			GradedCount int     `json:"graded_count"`
			Mean        float64 `json:"mean"`
		}
		if err := c.do(http.MethodGet, "/stats/subjects/"+subjectID, nil, &stats); err != nil {
			return err
		}
		if stats.GradedCount != 1 {
			return fmt.Errorf("expected 1 graded student, got %d", stats.GradedCount)
		}
		if math.Abs(stats.Mean-7.2) > 0.01 {
			return fmt.Errorf("unexpected mean grade %.2f", stats.Mean)
		}
		return nil
	})

	fmt.Println("smoke: all steps passed")
}

func step(name string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("smoke: %s failed: %v", name, err)
		os.Exit(1)
	}
	fmt.Printf("smoke: %s ok\n", name)
}

func (c *client) do(method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("status %d: unparseable body: %s", resp.StatusCode, truncate(raw))
		}
	}
	if resp.StatusCode >= 400 {
		if env.Error != nil {
			return fmt.Errorf("status %d: %s: %s", resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw))
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func truncate(raw []byte) string {
	const max = 200
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
