package services

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bikepulse/internal/shared/testutil"
	"bikepulse/pkg/contracts"
	"bikepulse/pkg/contracts/domain"
)

type mockDataset struct {
	mock.Mock
}

func (m *mockDataset) Bounds(ctx context.Context) domain.DateRange {
	args := m.Called(ctx)
	return args.Get(0).(domain.DateRange)
}

type mockClients struct {
	mock.Mock
}

func (m *mockClients) ClientCount() int {
	return m.Called().Int(0)
}

func TestHealthService_HealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		dataset    func(t *testing.T) DatasetProvider
		wantStatus string
		wantMsg    string
	}{
		{
			name:       "no dataset",
			dataset:    func(t *testing.T) DatasetProvider { return nil },
			wantStatus: "not_ready",
			wantMsg:    "dataset not loaded",
		},
		{
			name: "empty dataset",
			dataset: func(t *testing.T) DatasetProvider {
				m := &mockDataset{}
				m.On("Bounds", mock.Anything).Return(domain.DateRange{})
				return m
			},
			wantStatus: "not_ready",
			wantMsg:    "dataset is empty",
		},
		{
			name: "loaded dataset",
			dataset: func(t *testing.T) DatasetProvider {
				return newScenarioService(t)
			},
			wantStatus: "ready",
			wantMsg:    "3 records from 2011-01-03 to 2011-01-05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService(tt.dataset(t), nil, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)

			dataset, ok := status.Services["dataset"].(ServiceHealth)
			assert.True(t, ok)
			assert.Equal(t, tt.wantMsg, dataset.Message)
		})
	}
}

func TestHealthService_ReadinessReportsClients(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	clients := &mockClients{}
	clients.On("ClientCount").Return(4)

	hs := NewHealthService(newScenarioService(t), clients, logger)
	status := hs.ReadinessCheck(context.Background())

	ws := status.Services["websocket"].(ServiceHealth)
	assert.Equal(t, "ready", ws.Status)
	assert.Equal(t, "4 clients connected", ws.Message)
	clients.AssertExpectations(t)
}

func TestHealthService_LivenessCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, nil, logger)

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Equal(t, runtime.Version(), status.Runtime["go_version"])
	assert.Contains(t, status.Runtime, "goroutines")
	assert.Contains(t, status.Runtime, "uptime")
}

func TestHealthService_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService(nil, nil, logger)

	v := hs.Version()
	assert.Equal(t, contracts.Version, v.Version)
	assert.Equal(t, contracts.DatasetSchema, v.DatasetSchema)
	assert.Equal(t, runtime.GOOS, v.OS)
	assert.NotEmpty(t, v.StartTime)
	assert.GreaterOrEqual(t, v.Uptime, 0.0)
}
