package sync

import (
	"context"
	"fmt"

	"github.com/nikbrunner/bmsync/internal/gitee"
)

// ResolveSettings overlays settings stored in kv on top of base.
// Stored non-empty values win.
func ResolveSettings(ctx context.Context, kv KeyValueConfig, base gitee.Settings) (gitee.Settings, error) {
	if kv == nil {
		return base, nil
	}
	values, err := kv.Get(ctx, gitee.Keys()...)
	if err != nil {
		return base, fmt.Errorf("read stored settings: %w", err)
	}
	return base.Overlay(gitee.SettingsFromValues(values)), nil
}

// SaveSettings stores the non-empty fields of s.
func SaveSettings(ctx context.Context, kv KeyValueConfig, s gitee.Settings) error {
	values := map[string]string{}
	for k, v := range s.Values() {
		if v != "" {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return nil
	}
	return kv.Set(ctx, values)
}
