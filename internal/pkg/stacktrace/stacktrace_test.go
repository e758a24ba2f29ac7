package stacktrace

import (
	"reflect"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/easymed/internal/auth/usecase.(*Usecase).SendOTP(0xc000120000, {0x1, 0x2})
	/src/easymed/internal/auth/usecase/otp_send.go:42 +0x1d
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220
internal/poll.(*FD).Read(0xc0001)
	/usr/local/go/src/internal/poll/fd_unix.go:165 +0x27a
github.com/shandysiswandi/easymed/internal/pkg/router.middlewareRecoverer.func1()
	/src/easymed/internal/pkg/router/middleware_recover.go:31
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	want := []string{
		"internal/auth/usecase/otp_send.go:42 usecase.(*Usecase).SendOTP",
		"internal/pkg/router/middleware_recover.go:31 router.middlewareRecoverer.func1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("InternalPaths() = %#v, want %#v", got, want)
	}
}

func TestInternalPaths_Empty(t *testing.T) {
	if got := InternalPaths(nil); len(got) != 0 {
		t.Fatalf("InternalPaths(nil) = %v, want empty", got)
	}
}
