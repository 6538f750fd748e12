package integration

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/suite"

	api "github.com/RoystonDAlmeida/url-shortener-service/internal/api/http"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/service"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/storage/memory"
)

// APITestSuite exercises the full stack: router, handlers, service and the
// real in-memory store, with no mocks.
type APITestSuite struct {
	suite.Suite
	logger *httplog.Logger
	server *httptest.Server
	e      *httpexpect.Expect
}

func (suite *APITestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *APITestSuite) SetupTest() {
	urlStore := memory.NewURLStore()
	urlSvc := service.NewURLService(urlStore)
	router := api.NewRouter(suite.logger, urlSvc)

	suite.server = httptest.NewServer(router)
	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.server.URL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *APITestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *APITestSuite) shorten(url string) string {
	obj := suite.e.POST("/api/shorten").
		WithJSON(map[string]string{"url": url}).
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	obj.Value("short_code").String().Match(`^[a-zA-Z0-9]{6}$`)

	shortCode := obj.Value("short_code").String().Raw()
	obj.HasValue("short_url", suite.server.URL+"/"+shortCode)

	return shortCode
}

func (suite *APITestSuite) TestShortenRedirectStatsFlow() {
	const originalURL = "https://www.google.com"

	shortCode := suite.shorten(originalURL)

	suite.e.GET("/api/stats/" + shortCode).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("url", originalURL).
		HasValue("clicks", 0).
		ContainsKey("created_at")

	suite.e.GET("/api/" + shortCode).
		Expect().
		Status(http.StatusFound).
		Header("Location").IsEqual(originalURL)

	suite.e.GET("/api/stats/" + shortCode).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("clicks", 1)
}

func (suite *APITestSuite) TestClickCounting() {
	const clicks = 5

	shortCode := suite.shorten("https://example.com")

	for i := 0; i < clicks; i++ {
		suite.e.GET("/api/" + shortCode).
			Expect().
			Status(http.StatusFound)
	}

	// Stats reads are idempotent: repeated calls without intervening
	// redirects report the same count.
	for i := 0; i < 3; i++ {
		suite.e.GET("/api/stats/" + shortCode).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("clicks", clicks)
	}
}

func (suite *APITestSuite) TestUnknownShortCode() {
	suite.e.GET("/api/zzzzzz").
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().
		HasValue("error", "Short code not found")

	suite.e.GET("/api/stats/zzzzzz").
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().
		HasValue("error", "Short code not found")
}

func (suite *APITestSuite) TestShortenValidation() {
	const path = "/api/shorten"

	suite.e.POST(path).
		WithJSON(map[string]string{"url": "not_a_url"}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		ContainsKey("error")

	suite.e.POST(path).
		WithJSON(map[string]string{}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		ContainsKey("error")

	suite.e.POST(path).
		WithHeader("Content-Type", "text/plain").
		WithText(`{"url": "https://example.com"}`).
		Expect().
		Status(http.StatusUnsupportedMediaType).
		JSON().Object().
		ContainsKey("error")
}

func (suite *APITestSuite) TestConcurrentShortensYieldDistinctCodes() {
	const (
		workers        = 10
		urlsPerWorker  = 2
		totalShortened = workers * urlsPerWorker
	)

	var (
		mu    sync.Mutex
		codes = make(map[string]struct{}, totalShortened)
		wg    sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < urlsPerWorker; i++ {
				shortCode := suite.shorten(fmt.Sprintf("https://example.com/%d/%d", w, i))

				mu.Lock()
				codes[shortCode] = struct{}{}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	suite.Len(codes, totalShortened)
}

func (suite *APITestSuite) TestDebugMappings() {
	first := suite.shorten("https://example.com")
	second := suite.shorten("https://example.org")

	obj := suite.e.GET("/api/debug/mappings").
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	obj.Keys().ContainsOnly(first, second)
	obj.Value(first).Object().
		HasValue("url", "https://example.com").
		HasValue("clicks", 0)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
