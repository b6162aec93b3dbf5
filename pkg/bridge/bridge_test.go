package bridge

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

type User struct {
	Email    string `json:"email"`
	Password string `json:"-"`
	Nickname string `json:"nickname,omitempty"`
	Tags     []string
}

func createUser(email, password, _ string) User {
	return User{Email: email, Password: password}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister("hello", func(a, b int) int { return a + b }, "num1", "num2")
	reg.MustRegister("create_user", createUser, "email", "password", "username")
	reg.MustRegister("fail", func(ctx context.Context, msg string) (bool, error) {
		return false, stderrors.New(msg)
	})
	reg.MustRegister("whoami", func(ctx context.Context) (string, error) {
		v, _ := ctx.Value(ctxKey{}).(string)
		return v, nil
	})
	return reg
}

type ctxKey struct{}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "tester"))
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterErrors(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("ok", func() int { return 1 })

	tests := []struct {
		name string
		fn   any
		code string
	}{
		{"ok", func() int { return 2 }, "E161"},
		{"bad-name", func() int { return 1 }, "E162"},
		{"", func() int { return 1 }, "E162"},
		{"notfunc", 42, "E160"},
		{"variadic", func(xs ...int) int { return len(xs) }, "E160"},
		{"noresult", func() {}, "E160"},
		{"onlyerr", func() error { return nil }, "E160"},
		{"three", func() (int, int, error) { return 0, 0, nil }, "E160"},
		{"ctxlater", func(a int, ctx context.Context) int { return a }, "E160"},
	}
	for _, tt := range tests {
		if err := reg.Register(tt.name, tt.fn); !errors.HasCode(err, tt.code) {
			t.Errorf("Register(%q) error = %v, want %s", tt.name, err, tt.code)
		}
	}

	if err := reg.Register("named", func(a int) int { return a }, "a", "b"); !errors.HasCode(err, "E160") {
		t.Errorf("parameter name count mismatch: %v", err)
	}
}

func TestFunctionsSorted(t *testing.T) {
	var names []string
	for _, f := range testRegistry(t).Functions() {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "create_user,fail,hello,whoami" {
		t.Errorf("Functions() = %v", names)
	}
}

func TestHandlerCalls(t *testing.T) {
	h := testRegistry(t).Handler()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		want   string
	}{
		{"sum", "/hello", `[1, 2]`, 200, "3"},
		{"struct result", "/create_user", `["a@b.c", "pw", "x"]`, 200, `{"email":"a@b.c","Tags":null}`},
		{"context passed", "/whoami", `[]`, 200, `"tester"`},
		{"function error", "/fail", `["nope"]`, 500, `{"error":"nope"}`},
		{"unknown", "/missing", `[]`, 404, `{"error":"no such function"}`},
		{"wrong arity", "/hello", `[1]`, 400, `{"error":"hello takes 2 arguments, got 1"}`},
		{"not an array", "/hello", `{"a":1}`, 400, `{"error":"request body must be a JSON array of arguments"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestHandlerBadArgumentType(t *testing.T) {
	rec := post(testRegistry(t).Handler(), "/hello", `["one", 2]`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "num1") {
		t.Errorf("error should name the argument: %s", rec.Body.String())
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	testRegistry(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Errorf("Allow = %q", rec.Header().Get("Allow"))
	}
}

func TestHandlerBodyLimit(t *testing.T) {
	h := testRegistry(t).Handler(HandlerConfig{MaxBodyBytes: 8})
	rec := post(h, "/hello", `[1000000, 2000000]`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandlerObserver(t *testing.T) {
	type call struct {
		name   string
		status int
	}
	var calls []call
	h := testRegistry(t).Handler(HandlerConfig{
		Observer: func(name string, status int, _ time.Duration) {
			calls = append(calls, call{name, status})
		},
	})

	post(h, "/hello", `[1, 2]`)
	post(h, "/fail", `["x"]`)
	post(h, "/missing", `[]`)

	want := []call{{"hello", 200}, {"fail", 500}, {UnknownFunction, 404}}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestClientCall(t *testing.T) {
	srv := httptest.NewServer(http.StripPrefix("/api", testRegistry(t).Handler()))
	defer srv.Close()
	c := NewClient(srv.URL + "/api/")

	var sum int
	if err := c.Call(context.Background(), "hello", &sum, 20, 22); err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if sum != 42 {
		t.Errorf("sum = %d", sum)
	}

	var u User
	if err := c.Call(context.Background(), "create_user", &u, "me@x.io", "pw", "me"); err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if u.Email != "me@x.io" || u.Password != "" {
		t.Errorf("user = %+v", u)
	}

	if err := c.Call(context.Background(), "whoami", nil); err != nil {
		t.Errorf("Call() without args error: %v", err)
	}
}

func TestClientCallError(t *testing.T) {
	srv := httptest.NewServer(testRegistry(t).Handler())
	defer srv.Close()
	c := NewClient(srv.URL)

	err := c.Call(context.Background(), "fail", nil, "broken")
	var callErr *CallError
	if !stderrors.As(err, &callErr) {
		t.Fatalf("Call() error = %v, want *CallError", err)
	}
	if callErr.Status != http.StatusInternalServerError || callErr.Message != "broken" {
		t.Errorf("CallError = %+v", callErr)
	}

	c = NewClient("http://127.0.0.1:1")
	if err := c.Call(context.Background(), "hello", nil, 1, 2); !errors.HasCode(err, "E163") {
		t.Errorf("transport failure error = %v, want E163", err)
	}
}

func TestGenerateTypeScript(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateTypeScript(&buf, testRegistry(t), "http://localhost:3000/api/"); err != nil {
		t.Fatal(err)
	}
	code := buf.String()

	for _, want := range []string{
		"DO NOT EDIT",
		`import axios from "axios";`,
		`const baseURL = "http://localhost:3000/api";`,
		"export interface User {\n  email: string;\n  nickname?: string;\n  Tags: Array<string>;\n}",
		"export async function hello(num1: number, num2: number): Promise<number> {",
		"const data = [num1, num2];",
		"await axios.post<number>(`${baseURL}/hello`, data);",
		"export async function create_user(email: string, password: string, username: string): Promise<User> {",
		"export async function fail(arg0: string): Promise<boolean> {",
		"export async function whoami(): Promise<string> {",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated module is missing %q\n%s", want, code)
		}
	}
	if strings.Contains(code, "Password") {
		t.Error("json:\"-\" fields must not be emitted")
	}

	// Deterministic output.
	var again bytes.Buffer
	GenerateTypeScript(&again, testRegistry(t), "http://localhost:3000/api/")
	if again.String() != code {
		t.Error("output is not deterministic")
	}
}

func TestTypeMapping(t *testing.T) {
	type inner struct{ N int }
	g := &tsGen{named: map[string]reflect.Type{}}
	tests := []struct {
		v    any
		want string
	}{
		{true, "boolean"},
		{int64(1), "number"},
		{1.5, "number"},
		{"s", "string"},
		{[]byte("x"), "string"},
		{[]int{}, "Array<number>"},
		{map[string]bool{}, "Record<string, boolean>"},
		{(*int)(nil), "number | null"},
		{time.Time{}, "string"},
		{struct{ A string }{}, "{ A: string }"},
		{inner{}, "inner"},
	}
	for _, tt := range tests {
		if got := g.typeOf(reflect.TypeOf(tt.v)); got != tt.want {
			t.Errorf("typeOf(%T) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
