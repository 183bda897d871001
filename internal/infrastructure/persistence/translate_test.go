package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")
	tests := []struct {
		in   error
		want error
	}{
		{nil, nil},
		{gorm.ErrRecordNotFound, shared.ErrNotFound},
		{fmt.Errorf("find: %w", gorm.ErrRecordNotFound), shared.ErrNotFound},
		{gorm.ErrDuplicatedKey, shared.ErrAlreadyExists},
		{errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`), shared.ErrAlreadyExists},
		{errors.New("UNIQUE constraint failed: users.username"), shared.ErrAlreadyExists},
		{other, other},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, translate(tt.in), "%v", tt.in)
	}
}
