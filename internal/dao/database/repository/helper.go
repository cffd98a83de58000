package repository

import (
	"errors"
	"strings"

	"sms_campaign_server/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError maps gorm.ErrRecordNotFound to CodeNotFound and anything else to CodeDBError.
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf is wrapDBError with a formatted message.
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

func isNotFound(err error) bool {
	return errorx.IsCode(err, errorx.CodeNotFound)
}

// NormalizeListName lowercases name and joins its whitespace-separated words with "_".
func NormalizeListName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// uniqueUints drops duplicates, keeping first-seen order.
func uniqueUints(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
