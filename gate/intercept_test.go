package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseInterceptorReleasesAfterSuccessfulSettle(t *testing.T) {
	rec := httptest.NewRecorder()
	settled := false
	interceptor := &responseInterceptor{
		w: rec,
		onSuccess: func() bool {
			settled = true
			return true
		},
	}
	interceptor.WriteHeader(http.StatusOK)
	interceptor.Write([]byte(`{"ok":true}`))

	if !settled {
		t.Fatal("expected onSuccess to run before release")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestResponseInterceptorImplicitWriteHeaderOn200(t *testing.T) {
	rec := httptest.NewRecorder()
	settled := false
	interceptor := &responseInterceptor{
		w: rec,
		onSuccess: func() bool {
			settled = true
			return true
		},
	}
	// Handler never calls WriteHeader explicitly; first Write implies 200.
	interceptor.Write([]byte("hello"))

	if !settled {
		t.Fatal("expected onSuccess to run on implicit 200")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestResponseInterceptorSkipsSettlementOnHandlerError(t *testing.T) {
	rec := httptest.NewRecorder()
	settleCalled := false
	failureStatus := 0
	interceptor := &responseInterceptor{
		w: rec,
		onSuccess: func() bool {
			settleCalled = true
			return true
		},
		onFailure: func(statusCode int) {
			failureStatus = statusCode
		},
	}
	interceptor.WriteHeader(http.StatusInternalServerError)
	interceptor.Write([]byte("boom"))

	if settleCalled {
		t.Fatal("expected settlement not to run for a failing handler")
	}
	if failureStatus != http.StatusInternalServerError {
		t.Fatalf("expected onFailure called with 500, got %d", failureStatus)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 released, got %d", rec.Code)
	}
	if rec.Body.String() != "boom" {
		t.Fatalf("expected handler body released unchanged, got %q", rec.Body.String())
	}
}

func TestResponseInterceptorHijacksBodyOnSettlementFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	interceptor := &responseInterceptor{
		w: rec,
		onSuccess: func() bool {
			// Simulate settlement writing its own 402 replacement body.
			rec.WriteHeader(http.StatusPaymentRequired)
			rec.Write([]byte(`{"error":"settlement failed"}`))
			return false
		},
	}
	interceptor.WriteHeader(http.StatusOK)
	n, err := interceptor.Write([]byte(`{"ok":true}`))

	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(`{"ok":true}`) {
		t.Fatalf("expected Write to report full length even when discarded, got %d", n)
	}
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 from settlement failure, got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"settlement failed"}` {
		t.Fatalf("expected only the settlement-failure body to be released, got %q", rec.Body.String())
	}
}

func TestResponseInterceptorCommitsOnlyOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	calls := 0
	interceptor := &responseInterceptor{
		w: rec,
		onSuccess: func() bool {
			calls++
			return true
		},
	}
	interceptor.WriteHeader(http.StatusOK)
	interceptor.WriteHeader(http.StatusCreated)

	if calls != 1 {
		t.Fatalf("expected onSuccess to run exactly once, got %d", calls)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected the first committed status to win, got %d", rec.Code)
	}
}
