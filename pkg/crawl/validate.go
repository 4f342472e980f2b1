package crawl

import (
	"context"
	"errors"
	"reflect"

	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
)

var (
	errNilConnection = errors.New("connection is nil")
	errNilMetaData   = errors.New("driver returned no metadata")
)

// ValidateConnection checks that conn is present and answers a ping.
// It issues no other statement.
func ValidateConnection(ctx context.Context, conn adapter.Conn) error {
	if isNil(conn) {
		return &ConnectionError{Op: "validate connection", Err: errNilConnection}
	}
	if err := conn.Ping(ctx); err != nil {
		return &ConnectionError{Op: "validate connection", Err: err}
	}
	return nil
}

// isNil catches typed nil pointers stored in an interface.
func isNil(x any) bool {
	if x == nil {
		return true
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
