// internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"
)

// Kind phân loại lỗi của ledger để caller có thể xử lý theo từng loại.
type Kind int

const (
	// KindValidation: input sai (ngày tháng, số lượng, metadata rỗng...).
	KindValidation Kind = iota
	// KindNotFound: batch hoặc project id chưa từng được cấp.
	KindNotFound
	// KindState: vi phạm precondition về trạng thái (sai token type,
	// thiếu số lượng, stage đi lùi...).
	KindState
	// KindAuthorization: principal không có capability cần thiết.
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	case KindAuthorization:
		return "authorization"
	}
	return "unknown"
}

// Error là lỗi có phân loại của ledger. Op là tên operation bị từ chối,
// Reason là precondition đã bị vi phạm.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Reason)
}

// KindOf trả về Kind của một lỗi ledger, hoặc -1 nếu không phải lỗi ledger.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return Kind(-1)
}

func validationErr(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Reason: fmt.Sprintf(format, args...)}
}

func notFoundErr(op, format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Op: op, Reason: fmt.Sprintf(format, args...)}
}

func stateErr(op, format string, args ...interface{}) error {
	return &Error{Kind: KindState, Op: op, Reason: fmt.Sprintf(format, args...)}
}

func authorizationErr(op, principal string) error {
	return &Error{Kind: KindAuthorization, Op: op, Reason: fmt.Sprintf("principal %q does not hold the required capability", principal)}
}
