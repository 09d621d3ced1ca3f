package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
)

// FakeAPI is an in-memory marketplace API served over httptest. Seed the
// exported slices before issuing requests; use Fail to force errors.
type FakeAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	Users     []models.User
	Passwords map[string]string // email -> password
	Tokens    map[string]string // email -> token returned by sign-in
	Rooms     []models.Room
	Locations []models.Location
	Bookings  []models.Booking

	failures map[string]int // "METHOD /path" -> status
	calls    []string
}

// NewFakeAPI starts a fake API closed automatically at test end.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		Passwords: map[string]string{},
		Tokens:    map[string]string{},
		failures:  map[string]int{},
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to hand to apiclient.New.
func (f *FakeAPI) URL() string { return f.Server.URL }

// Fail makes every request matching method and path answer with status.
func (f *FakeAPI) Fail(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

// Calls returns "METHOD /path" for every request received, in order.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts requests matching "METHOD /path".
func (f *FakeAPI) CallCount(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *FakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)

	r.Post("/auth/signin", f.signIn)
	r.Post("/auth/signup", f.signUp)

	r.Get("/users", func(w http.ResponseWriter, r *http.Request) { f.ok(w, f.Users) })
	r.Get("/users/phan-trang-tim-kiem", func(w http.ResponseWriter, r *http.Request) {
		f.ok(w, paginate(r, f.Users, func(u models.User) string { return u.Name }))
	})
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.byID(w, r, len(f.Users), func(i int) (int, any) { return f.Users[i].ID, f.Users[i] })
	})
	r.Put("/users/{id}", f.updateUser)
	r.Delete("/users", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.URL.Query().Get("id"))
		f.mu.Lock()
		f.Users = remove(f.Users, func(u models.User) bool { return u.ID == id })
		f.mu.Unlock()
		f.ok(w, nil)
	})

	r.Get("/phong-thue", func(w http.ResponseWriter, r *http.Request) { f.ok(w, f.Rooms) })
	r.Get("/phong-thue/phan-trang-tim-kiem", func(w http.ResponseWriter, r *http.Request) {
		f.ok(w, paginate(r, f.Rooms, func(x models.Room) string { return x.Name }))
	})
	r.Get("/phong-thue/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.byID(w, r, len(f.Rooms), func(i int) (int, any) { return f.Rooms[i].ID, f.Rooms[i] })
	})
	r.Delete("/phong-thue/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := urlID(r)
		f.mu.Lock()
		f.Rooms = remove(f.Rooms, func(x models.Room) bool { return x.ID == id })
		f.mu.Unlock()
		f.ok(w, nil)
	})

	r.Get("/vi-tri", func(w http.ResponseWriter, r *http.Request) { f.ok(w, f.Locations) })
	r.Get("/vi-tri/phan-trang-tim-kiem", func(w http.ResponseWriter, r *http.Request) {
		f.ok(w, paginate(r, f.Locations, func(x models.Location) string { return x.Name }))
	})
	r.Get("/vi-tri/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.byID(w, r, len(f.Locations), func(i int) (int, any) { return f.Locations[i].ID, f.Locations[i] })
	})
	r.Delete("/vi-tri/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := urlID(r)
		f.mu.Lock()
		f.Locations = remove(f.Locations, func(x models.Location) bool { return x.ID == id })
		f.mu.Unlock()
		f.ok(w, nil)
	})

	r.Get("/dat-phong", func(w http.ResponseWriter, r *http.Request) { f.ok(w, f.Bookings) })
	r.Get("/dat-phong/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.byID(w, r, len(f.Bookings), func(i int) (int, any) { return f.Bookings[i].ID, f.Bookings[i] })
	})
	r.Get("/dat-phong/lay-theo-nguoi-dung/{id}", func(w http.ResponseWriter, r *http.Request) {
		uid := urlID(r)
		out := []models.Booking{}
		f.mu.Lock()
		for _, b := range f.Bookings {
			if b.UserID == uid {
				out = append(out, b)
			}
		}
		f.mu.Unlock()
		f.ok(w, out)
	})
	r.Delete("/dat-phong/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := urlID(r)
		f.mu.Lock()
		f.Bookings = remove(f.Bookings, func(x models.Booking) bool { return x.ID == id })
		f.mu.Unlock()
		f.ok(w, nil)
	})
	return r
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.calls = append(f.calls, key)
		status, fail := f.failures[key]
		f.mu.Unlock()
		if fail {
			writeEnvelope(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) signIn(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.Passwords[creds.Email]; !ok || pw != creds.Password {
		writeEnvelope(w, http.StatusBadRequest, "Email hoặc mật khẩu không đúng !")
		return
	}
	for _, u := range f.Users {
		if u.Email == creds.Email {
			token := f.Tokens[u.Email]
			if token == "" {
				token = "token-" + strconv.Itoa(u.ID)
			}
			writeEnvelope(w, http.StatusOK, models.SignIn{User: u, Token: token})
			return
		}
	}
	writeEnvelope(w, http.StatusBadRequest, "Email hoặc mật khẩu không đúng !")
}

func (f *FakeAPI) signUp(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if strings.EqualFold(u.Email, req.Email) {
			writeEnvelope(w, http.StatusBadRequest, "Email đã tồn tại !")
			return
		}
	}
	u := models.User{
		ID:       len(f.Users) + 100,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Birthday: req.Birthday,
		Gender:   req.Gender,
		Role:     req.Role,
	}
	f.Users = append(f.Users, u)
	f.Passwords[req.Email] = req.Password
	writeEnvelope(w, http.StatusOK, u)
}

func (f *FakeAPI) updateUser(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("token") == "" {
		writeEnvelope(w, http.StatusUnauthorized, "missing token")
		return
	}
	id := urlID(r)
	var upd models.UserUpdate
	_ = json.NewDecoder(r.Body).Decode(&upd)

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.Users {
		if u.ID == id {
			u.Name, u.Phone, u.Birthday, u.Gender = upd.Name, upd.Phone, upd.Birthday, upd.Gender
			if upd.Email != "" {
				u.Email = upd.Email
			}
			f.Users[i] = u
			writeEnvelope(w, http.StatusOK, u)
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, "not found")
}

func (f *FakeAPI) ok(w http.ResponseWriter, content any) {
	f.mu.Lock()
	b, err := json.Marshal(content)
	f.mu.Unlock()
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeEnvelope(w, http.StatusOK, json.RawMessage(b))
}

func (f *FakeAPI) byID(w http.ResponseWriter, r *http.Request, n int, at func(int) (int, any)) {
	id := urlID(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		if got, v := at(i); got == id {
			writeEnvelope(w, http.StatusOK, v)
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, "Không tìm thấy!")
}

func writeEnvelope(w http.ResponseWriter, status int, content any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"message":    http.StatusText(status),
		"content":    content,
		"dateTime":   "2024-01-01T00:00:00Z",
	})
}

func urlID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

func remove[T any](rows []T, match func(T) bool) []T {
	out := rows[:0]
	for _, r := range rows {
		if !match(r) {
			out = append(out, r)
		}
	}
	return out
}

func paginate[T any](r *http.Request, rows []T, name func(T) string) models.Page[T] {
	q := r.URL.Query()
	idx, _ := strconv.Atoi(q.Get("pageIndex"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	if idx < 1 {
		idx = 1
	}
	if size < 1 {
		size = 10
	}
	kw := text.Fold(q.Get("keyword"))

	var matched []T
	for _, row := range rows {
		if kw == "" || strings.Contains(text.Fold(name(row)), kw) {
			matched = append(matched, row)
		}
	}

	page := models.Page[T]{PageIndex: idx, PageSize: size, TotalRow: len(matched), Keywords: q.Get("keyword"), Data: []T{}}
	start := (idx - 1) * size
	if start < len(matched) {
		page.Data = matched[start:min(start+size, len(matched))]
	}
	return page
}
