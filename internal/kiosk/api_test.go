package kiosk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"PunchPass/internal/model/dto"
)

// 终端只认一种失败形状：无论网络错误、非 200 还是坏 JSON，
// Do 都要折叠成 status=error 的 Reply。
func TestAPIClientNormalizesFailures(t *testing.T) {
	ctx := context.Background()
	req := &dto.AttendanceRequest{Action: "status", EmployeeID: "000001"}

	t.Run("connection refused", func(t *testing.T) {
		client := NewAPIClient("http://127.0.0.1:1")
		reply := client.Do(ctx, req)
		if reply.Status != "error" || reply.Message == "" {
			t.Fatalf("expected error reply, got %+v", reply)
		}
	})

	t.Run("non-json body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway error</html>"))
		}))
		defer srv.Close()

		reply := NewAPIClient(srv.URL).Do(ctx, req)
		if reply.Status != "error" {
			t.Fatalf("expected error reply, got %+v", reply)
		}
	})

	t.Run("500 without wire shape", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("{}"))
		}))
		defer srv.Close()

		reply := NewAPIClient(srv.URL).Do(ctx, req)
		if reply.Status != "error" {
			t.Fatalf("expected error reply, got %+v", reply)
		}
	})

	t.Run("server error shape passes through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":"error","message":"Already checked in for today."}`))
		}))
		defer srv.Close()

		reply := NewAPIClient(srv.URL).Do(ctx, req)
		if reply.Status != "error" || reply.Message != "Already checked in for today." {
			t.Fatalf("server message must pass through verbatim, got %+v", reply)
		}
	})
}
