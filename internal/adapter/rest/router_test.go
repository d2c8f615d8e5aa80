package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/estateflow-backend/internal/adapter/cache"
	"github.com/simaogato/estateflow-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/metrics"
	"github.com/simaogato/estateflow-backend/internal/usecase/pricing"
	"github.com/simaogato/estateflow-backend/internal/usecase/scheduler"
	"github.com/simaogato/estateflow-backend/internal/usecase/seeder"
	"github.com/simaogato/estateflow-backend/internal/usecase/timeline"
)

const testToken = "test-token"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	productRepo := sqlstore.NewProductRepository(db)
	sitePlanRepo := sqlstore.NewSitePlanRepository(db)
	discountRepo := sqlstore.NewDiscountRepository(db)
	scheduleRepo := sqlstore.NewScheduleRepository(db)

	depositDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	catalogSeeder := seeder.NewCatalogSeeder(discountRepo, sitePlanRepo, productRepo)
	_, err = catalogSeeder.Seed(ctx)
	require.NoError(t, err)
	require.NoError(t, catalogSeeder.SeedDemo(ctx, depositDate))

	memory := cache.NewMemoryCache()
	scheduleService := timeline.NewScheduleService(productRepo, sitePlanRepo, scheduleRepo, memory, domain.DefaultCurrency, scheduler.DefaultConfig())
	// Two years after the deposit every installment has elapsed
	scheduleService.Now = func() time.Time { return depositDate.AddDate(2, 0, 0) }

	return NewRouter(&Handler{
		PricingService:  pricing.NewPricingService(productRepo, discountRepo, memory, domain.DefaultCurrency, time.Minute),
		ScheduleService: scheduleService,
		APIToken:        testToken,
		Metrics:         metrics.New(),
	})
}

func do(router http.Handler, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	do(router, http.MethodGet, "/api/discounts", "", true)

	w = do(router, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `estateflow_requests_total{code="200",method="GET /api/discounts",transport="http"} 1`)
}

func TestPriceAndDiscountSelection(t *testing.T) {
	router := newTestRouter(t)
	pricePath := "/api/properties/" + seeder.DEMO_PRODUCT.String() + "/price"
	discountsPath := "/api/properties/" + seeder.DEMO_PRODUCT.String() + "/discounts"

	w := do(router, http.MethodGet, pricePath, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4440000000", decode(t, w)["final_price"])

	body := `{"discount_ids": ["` + seeder.DISCOUNT_FULL_PAYMENT.String() + `"]}`
	w = do(router, http.MethodPost, discountsPath, body, true)
	require.Equal(t, http.StatusOK, w.Code)
	selected := decode(t, w)
	assert.Equal(t, true, selected["success"])
	assert.Equal(t, float64(1), selected["selected_count"])

	// 9.5% of 4,440,000,000
	w = do(router, http.MethodGet, pricePath, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, "421800000", view["discount_total"])
	assert.Equal(t, "4018200000", view["final_price"])

	// An empty selection clears every discount
	w = do(router, http.MethodPost, discountsPath, `{"discount_ids": []}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["selected_count"])
}

func TestScheduleRoutes(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/properties/" + seeder.DEMO_PRODUCT.String()

	w := do(router, http.MethodPost, base+"/schedule/regenerate", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	schedule := decode(t, w)
	assert.Equal(t, "2024-01-01", schedule["anchor_date"])

	// Every installment elapsed: they are all carried into the handover
	milestones := schedule["milestones"].([]interface{})
	require.Len(t, milestones, 6)
	handover := milestones[3].(map[string]interface{})
	assert.Equal(t, "HANDOVER", handover["kind"])
	assert.Len(t, handover["folded"], 6)
	assert.Equal(t, "4080000000", schedule["total_principal"])

	w = do(router, http.MethodGet, base+"/schedule", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["milestones"], 6)
}

func TestErrors(t *testing.T) {
	router := newTestRouter(t)
	demo := "/api/properties/" + seeder.DEMO_PRODUCT.String()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		authorized bool
		code       int
	}{
		{name: "missing token", method: http.MethodGet, path: demo + "/price", code: http.StatusUnauthorized},
		{name: "malformed property id", method: http.MethodGet, path: "/api/properties/lot-7/price", authorized: true, code: http.StatusBadRequest},
		{name: "unknown property", method: http.MethodGet, path: "/api/properties/" + uuid.New().String() + "/schedule", authorized: true, code: http.StatusNotFound},
		{name: "malformed body", method: http.MethodPost, path: demo + "/discounts", body: `{"discount_ids": "all"}`, authorized: true, code: http.StatusBadRequest},
		{name: "malformed discount id", method: http.MethodPost, path: demo + "/discounts", body: `{"discount_ids": ["x"]}`, authorized: true, code: http.StatusBadRequest},
		{name: "unknown discount", method: http.MethodPost, path: demo + "/discounts", body: `{"discount_ids": ["` + uuid.New().String() + `"]}`, authorized: true, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.body, tt.authorized)
			assert.Equal(t, tt.code, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}
