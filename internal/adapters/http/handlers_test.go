package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	badgerstore "github.com/samirrijal/travelplan/internal/adapters/badger"
	handler "github.com/samirrijal/travelplan/internal/adapters/http"
	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/core/usecases"
)

// ---- Test helpers ----

type env struct {
	app   *fiber.App
	store ports.Store
}

func setupApp(t *testing.T) *env {
	t.Helper()
	store, err := badgerstore.Open(badgerstore.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return newEnv(store)
}

func newEnv(store ports.Store) *env {
	catalog := usecases.NewCatalogService(store, nil, 0)
	deps := &handler.Dependencies{
		Cities:   usecases.NewCityService(store, nil, 0),
		Catalog:  catalog,
		Segments: usecases.NewSegmentService(store),
		Editor:   usecases.NewItineraryEditor(store, catalog, nil, domain.WindowInherit, nil),
		Travels:  usecases.NewTravelService(store, nil),
		Search:   usecases.NewSearchService(store),
		Stays:    usecases.NewStayService(store),
		Store:    store,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps, handler.RouterConfig{})
	return &env{app: app, store: store}
}

func (e *env) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected %d, got %d: %s", want, resp.StatusCode, b)
	}
}

func expectErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	expectStatus(t, resp, status)
	var apiErr handler.APIError
	decode(t, resp, &apiErr)
	if apiErr.Code != code {
		t.Errorf("expected error code %s, got %s (%s)", code, apiErr.Code, apiErr.Message)
	}
}

type page[T any] struct {
	Data       []T                `json:"data"`
	Pagination handler.Pagination `json:"pagination"`
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

// seedLeg creates cities A, B, C, offers A->C, A->B, B->C and a travel whose
// only segment is A->C.
type seeded struct {
	a, b, c, travel, segment int64
}

func seedLeg(t *testing.T, s ports.Store) seeded {
	t.Helper()
	ctx := context.Background()
	var out seeded
	for i, name := range []string{"Saint Petersburg", "Moscow", "Kazan"} {
		c := &domain.City{Name: name}
		if err := s.Cities().Create(ctx, c); err != nil {
			t.Fatalf("create city: %v", err)
		}
		switch i {
		case 0:
			out.a = c.ID
		case 1:
			out.b = c.ID
		case 2:
			out.c = c.ID
		}
	}
	offer := func(from, to int64) int64 {
		o := &domain.TransportOffer{Mode: domain.ModeTrain, Cost: 1000, Distance: 700, DepartureCityID: from, DestinationCityID: to}
		if err := s.Offers().Create(ctx, o); err != nil {
			t.Fatalf("create offer: %v", err)
		}
		return o.ID
	}
	direct := offer(out.a, out.c)
	offer(out.a, out.b)
	offer(out.b, out.c)

	tr := &domain.Travel{Status: domain.StatusInProgress, UserID: 1}
	if err := s.Travels().Create(ctx, tr); err != nil {
		t.Fatalf("create travel: %v", err)
	}
	out.travel = tr.ID

	seg := &domain.Segment{TravelID: tr.ID, OfferID: direct, StartTime: day(2025, 4, 10, 8), EndTime: day(2025, 4, 10, 20)}
	if err := s.Segments().Create(ctx, seg); err != nil {
		t.Fatalf("create segment: %v", err)
	}
	out.segment = seg.ID
	return out
}

// ---- City handler tests ----

func TestCities_CreateAndList(t *testing.T) {
	e := setupApp(t)

	resp := e.do(t, "POST", "/v1/cities", map[string]any{"name": "  Kazan "})
	expectStatus(t, resp, 201)
	var created domain.City
	decode(t, resp, &created)
	if created.ID == 0 || created.Name != "Kazan" {
		t.Fatalf("unexpected city %+v", created)
	}

	resp = e.do(t, "GET", "/v1/cities", nil)
	expectStatus(t, resp, 200)
	var result page[domain.City]
	decode(t, resp, &result)
	if result.Pagination.Total != 1 || len(result.Data) != 1 {
		t.Errorf("expected 1 city, got %+v", result)
	}
}

func TestCities_DuplicateNameConflicts(t *testing.T) {
	e := setupApp(t)
	expectStatus(t, e.do(t, "POST", "/v1/cities", map[string]any{"name": "Kazan"}), 201)

	resp := e.do(t, "POST", "/v1/cities", map[string]any{"name": "Kazan"})
	expectErrorCode(t, resp, 409, "conflict")
}

func TestCities_NameTooLong(t *testing.T) {
	e := setupApp(t)
	resp := e.do(t, "POST", "/v1/cities", map[string]any{"name": strings.Repeat("x", 51)})
	expectErrorCode(t, resp, 400, "bad_request")
}

func TestCities_NotFoundAndBadID(t *testing.T) {
	e := setupApp(t)
	expectErrorCode(t, e.do(t, "GET", "/v1/cities/999", nil), 404, "not_found")
	expectErrorCode(t, e.do(t, "GET", "/v1/cities/abc", nil), 400, "bad_request")
}

func TestCities_ReferencedCityCannotBeDeleted(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "DELETE", "/v1/cities/"+itoa(s.a), nil)
	expectErrorCode(t, resp, 409, "conflict")
}

// ---- Offer handler tests ----

func TestOffers_ListByCityPair(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "GET", "/v1/offers?from="+itoa(s.a)+"&to="+itoa(s.b), nil)
	expectStatus(t, resp, 200)
	var result page[domain.TransportOffer]
	decode(t, resp, &result)
	if len(result.Data) != 1 || !result.Data[0].Connects(s.a, s.b) {
		t.Errorf("expected the A->B offer, got %+v", result.Data)
	}

	expectErrorCode(t, e.do(t, "GET", "/v1/offers?from="+itoa(s.a), nil), 400, "bad_request")
}

func TestOffers_CreateAcceptsModeAlias(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "POST", "/v1/offers", map[string]any{
		"type_transport": "ferry", "price": 300, "distance": 120,
		"departure_city": s.c, "arrival_city": s.a,
	})
	expectStatus(t, resp, 201)
	var o domain.TransportOffer
	decode(t, resp, &o)
	if o.Mode != domain.ModeShip {
		t.Errorf("expected ship, got %s", o.Mode)
	}
}

func TestOffers_UnknownCityIsBadRequest(t *testing.T) {
	e := setupApp(t)
	resp := e.do(t, "POST", "/v1/offers", map[string]any{
		"type_transport": "bus", "price": 300, "distance": 120,
		"departure_city": 41, "arrival_city": 42,
	})
	expectErrorCode(t, resp, 400, "bad_request")
}

// ---- Itinerary edit tests ----

func TestAddCity_SplicesLeg(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "POST", "/v1/routes/add-city", map[string]any{
		"travel_id": s.travel, "new_city_id": s.b, "from_city_id": s.a, "to_city_id": s.c,
	})
	expectStatus(t, resp, 200)
	var body struct {
		Status string           `json:"status"`
		Routes []domain.Segment `json:"routes"`
	}
	decode(t, resp, &body)
	if len(body.Routes) != 2 {
		t.Fatalf("expected 2 new routes, got %d", len(body.Routes))
	}

	resp = e.do(t, "GET", "/v1/travels/"+itoa(s.travel)+"/itinerary", nil)
	expectStatus(t, resp, 200)
	var view usecases.ItineraryView
	decode(t, resp, &view)
	if !view.Connected || len(view.Segments) != 2 {
		t.Fatalf("expected connected 2-leg itinerary, got %+v", view)
	}
	if view.Segments[0].Offer.DestinationCityID != s.b {
		t.Errorf("first leg should arrive at the inserted city")
	}
	if !view.Segments[0].StartTime.Equal(day(2025, 4, 10, 8)) || !view.Segments[1].EndTime.Equal(day(2025, 4, 10, 20)) {
		t.Errorf("legs should keep the original window, got %+v", view.Segments)
	}
}

func TestAddCity_NoOfferIsUnprocessable(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)
	extra := &domain.City{Name: "Sochi"}
	if err := e.store.Cities().Create(context.Background(), extra); err != nil {
		t.Fatal(err)
	}

	resp := e.do(t, "POST", "/v1/routes/add-city", map[string]any{
		"travel_id": s.travel, "new_city_id": extra.ID, "from_city_id": s.a, "to_city_id": s.c,
	})
	expectErrorCode(t, resp, 422, "unprocessable")

	// the original leg is untouched
	seg, err := e.store.Segments().GetByID(context.Background(), s.segment)
	if err != nil || seg == nil {
		t.Fatalf("original segment should survive: %v", err)
	}
}

func TestAddCity_UnknownLegIsNotFound(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "POST", "/v1/routes/add-city", map[string]any{
		"travel_id": s.travel, "new_city_id": s.c, "from_city_id": s.a, "to_city_id": s.b,
	})
	expectErrorCode(t, resp, 404, "not_found")
}

func TestAddCity_MissingFieldsIsBadRequest(t *testing.T) {
	e := setupApp(t)
	resp := e.do(t, "POST", "/v1/routes/add-city", map[string]any{"travel_id": 1})
	expectErrorCode(t, resp, 400, "bad_request")
}

func TestDeleteCityFromRoute_AcceptsLegacyID(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "DELETE", "/v1/routes/delete-city", map[string]any{"id": s.c})
	expectStatus(t, resp, 200)
	var res usecases.CityRemoval
	decode(t, resp, &res)
	if res.SegmentsRemoved != 1 || res.OffersRemoved != 2 {
		t.Errorf("expected 1 segment and 2 offers removed, got %+v", res)
	}

	expectErrorCode(t, e.do(t, "GET", "/v1/routes/"+itoa(s.segment), nil), 404, "not_found")
}

func TestDeleteCityFromRoute_UnknownCityIsNoop(t *testing.T) {
	e := setupApp(t)
	seedLeg(t, e.store)

	resp := e.do(t, "DELETE", "/v1/routes/delete-city", map[string]any{"city_id": 999})
	expectStatus(t, resp, 200)
	var res usecases.CityRemoval
	decode(t, resp, &res)
	if res.SegmentsRemoved != 0 || res.OffersRemoved != 0 {
		t.Errorf("expected no-op, got %+v", res)
	}
}

func TestChangeTransport(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "PUT", "/v1/routes/change-transport", map[string]any{
		"route_id": s.segment, "new_transport": "plane", "new_price": 4500,
	})
	expectStatus(t, resp, 200)
	var body struct {
		Transport domain.TransportOffer `json:"transport"`
	}
	decode(t, resp, &body)
	if body.Transport.Mode != domain.ModePlane || body.Transport.Cost != 4500 {
		t.Errorf("unexpected offer %+v", body.Transport)
	}
	if body.Transport.Distance != 700 {
		t.Errorf("distance must not change, got %d", body.Transport.Distance)
	}
}

func TestChangeTransport_Errors(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "PUT", "/v1/routes/change-transport", map[string]any{
		"route_id": 999, "new_transport": "plane", "new_price": 10,
	})
	expectErrorCode(t, resp, 404, "not_found")

	resp = e.do(t, "PUT", "/v1/routes/change-transport", map[string]any{
		"route_id": s.segment, "new_transport": "rocket", "new_price": 10,
	})
	expectErrorCode(t, resp, 400, "bad_request")
}

// ---- Travel handler tests ----

func TestTravels_CompleteAndArchive(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	expectStatus(t, e.do(t, "PUT", "/v1/travels/"+itoa(s.travel)+"/complete", nil), 200)

	resp := e.do(t, "GET", "/v1/travels/archive", nil)
	expectStatus(t, resp, 200)
	var result page[domain.Travel]
	decode(t, resp, &result)
	if len(result.Data) != 1 || result.Data[0].Status != domain.StatusCompleted {
		t.Fatalf("expected one completed travel, got %+v", result.Data)
	}
	if len(result.Data[0].Segments) != 1 {
		t.Errorf("archived travel should be hydrated")
	}
}

func TestTravels_CreateDefaultsStatus(t *testing.T) {
	e := setupApp(t)
	resp := e.do(t, "POST", "/v1/travels", map[string]any{"user_id": 7})
	expectStatus(t, resp, 201)
	var tr domain.Travel
	decode(t, resp, &tr)
	if tr.Status != domain.StatusInProgress {
		t.Errorf("expected in_progress, got %s", tr.Status)
	}

	expectErrorCode(t, e.do(t, "POST", "/v1/travels", map[string]any{}), 400, "bad_request")
}

func TestTravels_DeleteCascades(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	expectStatus(t, e.do(t, "DELETE", "/v1/travels/"+itoa(s.travel), nil), 200)
	expectErrorCode(t, e.do(t, "GET", "/v1/travels/"+itoa(s.travel), nil), 404, "not_found")
	expectErrorCode(t, e.do(t, "GET", "/v1/routes/"+itoa(s.segment), nil), 404, "not_found")
}

func TestSearch_StartTimeExcludesEarlierTravel(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	search := func(start string) page[domain.Travel] {
		resp := e.do(t, "POST", "/v1/travels/search", map[string]any{
			"search": map[string]any{"departure_city": s.a, "start_time": start},
		})
		expectStatus(t, resp, 200)
		var result page[domain.Travel]
		decode(t, resp, &result)
		return result
	}

	if got := search("2025-04-11"); got.Pagination.Total != 0 {
		t.Errorf("travel starting before the filter must be excluded, got %d", got.Pagination.Total)
	}
	if got := search("2025-04-01"); got.Pagination.Total != 1 {
		t.Errorf("expected 1 match, got %d", got.Pagination.Total)
	}
}

func TestSearch_BareEndDateIncludesThatDay(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	// the seeded leg ends at 20:00 on 2025-04-10
	resp := e.do(t, "POST", "/v1/travels/search", map[string]any{
		"search": map[string]any{"end_time": "2025-04-10"},
	})
	expectStatus(t, resp, 200)
	var result page[domain.Travel]
	decode(t, resp, &result)
	if result.Pagination.Total != 1 || result.Data[0].ID != s.travel {
		t.Errorf("expected travel %d, got %+v", s.travel, result.Data)
	}
}

func TestSearch_EmptyBodyAndBadTimestamp(t *testing.T) {
	e := setupApp(t)
	seedLeg(t, e.store)

	resp := e.do(t, "POST", "/v1/travels/search", nil)
	expectStatus(t, resp, 200)
	var result page[domain.Travel]
	decode(t, resp, &result)
	if result.Pagination.Total != 1 {
		t.Errorf("empty filters should match every active travel, got %d", result.Pagination.Total)
	}

	resp = e.do(t, "POST", "/v1/travels/search", map[string]any{"search": map[string]any{"end_time": "soon"}})
	expectErrorCode(t, resp, 400, "bad_request")
}

// ---- Cross-cutting tests ----

func TestPagination_LinkHeader(t *testing.T) {
	e := setupApp(t)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		expectStatus(t, e.do(t, "POST", "/v1/cities", map[string]any{"name": name}), 201)
	}

	resp := e.do(t, "GET", "/v1/cities?offset=2&limit=2", nil)
	expectStatus(t, resp, 200)
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) || !strings.Contains(link, `rel="prev"`) {
		t.Errorf("expected prev and next links, got %q", link)
	}
	var result page[domain.City]
	decode(t, resp, &result)
	if result.Pagination.Total != 5 || len(result.Data) != 2 || result.Data[0].Name != "C" {
		t.Errorf("unexpected page %+v", result)
	}
}

func TestETag_NotModified(t *testing.T) {
	e := setupApp(t)
	expectStatus(t, e.do(t, "POST", "/v1/cities", map[string]any{"name": "Kazan"}), 201)

	resp := e.do(t, "GET", "/v1/cities", nil)
	expectStatus(t, resp, 200)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}

	req := httptest.NewRequest("GET", "/v1/cities", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	expectStatus(t, resp, 304)
}

func TestHealthAndReady(t *testing.T) {
	e := setupApp(t)
	expectStatus(t, e.do(t, "GET", "/v1/health", nil), 200)

	resp := e.do(t, "GET", "/v1/ready", nil)
	expectStatus(t, resp, 200)
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	decode(t, resp, &body)
	if body.Checks["store"] != "ok" || body.Checks["nats"] != "not configured" {
		t.Errorf("unexpected checks %+v", body.Checks)
	}
}

func TestGraphQL_Itinerary(t *testing.T) {
	e := setupApp(t)
	s := seedLeg(t, e.store)

	resp := e.do(t, "POST", "/graphql", map[string]any{
		"query": `query($id: Int!) { itinerary(travel_id: $id) { connected routes { transport { type_transport } } } cities { name } }`,
		"variables": map[string]any{"id": s.travel},
	})
	expectStatus(t, resp, 200)
	var body struct {
		Data struct {
			Itinerary struct {
				Connected bool `json:"connected"`
				Routes    []struct {
					Transport struct {
						Mode string `json:"type_transport"`
					} `json:"transport"`
				} `json:"routes"`
			} `json:"itinerary"`
			Cities []struct {
				Name string `json:"name"`
			} `json:"cities"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	decode(t, resp, &body)
	if len(body.Errors) > 0 {
		t.Fatalf("graphql errors: %v", body.Errors)
	}
	if !body.Data.Itinerary.Connected || len(body.Data.Itinerary.Routes) != 1 || body.Data.Itinerary.Routes[0].Transport.Mode != "train" {
		t.Errorf("unexpected itinerary %+v", body.Data.Itinerary)
	}
	if len(body.Data.Cities) != 3 {
		t.Errorf("expected 3 cities, got %d", len(body.Data.Cities))
	}
}

func TestWebSocket_NotRegisteredWithoutNATS(t *testing.T) {
	e := setupApp(t)
	expectStatus(t, e.do(t, "GET", "/ws", nil), 404)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
