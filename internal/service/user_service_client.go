package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/go-resty/resty/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
)

const userServiceBreaker = "user-service"

// UserServiceClient fetches profiles from the user service over HTTP.
type UserServiceClient struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*model.UserProfile]
}

func NewUserServiceClient(cfg *config.UserServiceConfig) *UserServiceClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &UserServiceClient{
		client: client,
		cb:     newBreaker[*model.UserProfile](userServiceBreaker),
	}
}

func (s *UserServiceClient) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	p, err := s.cb.Execute(func() (*model.UserProfile, error) {
		return s.fetch(ctx, userID)
	})
	recordBreakerResult(userServiceBreaker, err)
	return p, err
}

func (s *UserServiceClient) fetch(ctx context.Context, userID string) (*model.UserProfile, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("userId", userID).
		Get("/api/v1/profile/{userId}")
	if err != nil {
		return nil, fmt.Errorf("user service request: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("profile %s: %w", userID, apperror.ErrNotFound)
	case resp.IsError():
		return nil, fmt.Errorf("user service returned %d", resp.StatusCode())
	}

	return parseProfile(userID, resp.String())
}

// parseProfile accepts {"data":{"profile":{...}}} and {"data":{...}}.
func parseProfile(userID, body string) (*model.UserProfile, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("user service returned invalid JSON")
	}
	node := gjson.Get(body, "data.profile")
	if !node.Exists() {
		node = gjson.Get(body, "data")
	}
	if !node.IsObject() {
		return nil, fmt.Errorf("profile %s: %w", userID, apperror.ErrNotFound)
	}

	p := &model.UserProfile{
		UserID:             userID,
		Skills:             stringList(node.Get("skills")),
		Location:           node.Get("location").String(),
		CulturePreferences: stringList(node.Get("culture_preferences")),
		IsActive:           true,
	}
	if lvl, err := model.ParseExperienceLevel(node.Get("experience_level").String()); err == nil {
		p.ExperienceLevel = lvl
	}
	if rt, err := model.ParseRemoteType(node.Get("remote_preference").String()); err == nil {
		p.RemotePreference = rt
	}
	p.SalaryExpectationMin = optionalInt(node.Get("salary_expectation_min"))
	p.SalaryExpectationMax = optionalInt(node.Get("salary_expectation_max"))
	return p, nil
}

// stringList reads an array of strings or of objects with a name field.
func stringList(v gjson.Result) []string {
	out := []string{}
	v.ForEach(func(_, item gjson.Result) bool {
		name := item.String()
		if item.IsObject() {
			name = item.Get("name").String()
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
		return true
	})
	return out
}

func optionalInt(v gjson.Result) *int {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	n := int(v.Int())
	return &n
}
