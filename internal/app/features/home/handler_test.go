package home_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
	"github.com/dalemusser/staydesk/internal/app/features/home"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/staydesk/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestServeRoot_FetchesDestinations(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Locations = []models.Location{{ID: 1, Name: "Quận 1", Province: "Hồ Chí Minh"}}
	client := apiclient.New(api.URL(), "tok", zap.NewNop(), apiclient.WithRetry(apiclient.RetryConfig{}))

	h := home.NewHandler(client, zap.NewNop())
	testutil.Serve(h.ServeRoot, testutil.NewRequest("GET", "/"))

	if n := api.CallCount("GET /vi-tri/phan-trang-tim-kiem"); n != 1 {
		t.Errorf("expected one destination search, got %d", n)
	}
}

func TestServeRoot_APIDownStillRenders(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Fail("GET", "/vi-tri/phan-trang-tim-kiem", http.StatusInternalServerError)
	client := apiclient.New(api.URL(), "tok", zap.NewNop(), apiclient.WithRetry(apiclient.RetryConfig{}))

	core, logs := observer.New(zapcore.WarnLevel)
	h := home.NewHandler(client, zap.New(core))
	req := testutil.WithUser(testutil.NewRequest("GET", "/"), testutil.RegularUser())
	testutil.Serve(h.ServeRoot, req)

	if logs.FilterMessage("home: list destinations failed").Len() != 1 {
		t.Error("expected a warning for the failed fetch")
	}
}
