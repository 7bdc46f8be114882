package dspyopt

import (
	"context"
	"testing"
	"time"
)

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Temperature != 0.0 {
		t.Errorf("expected default temperature 0.0, got %f", s.Temperature)
	}
	if s.MaxTokens != 1000 {
		t.Errorf("expected default max tokens 1000, got %d", s.MaxTokens)
	}
	if s.QualityThreshold != 0.7 {
		t.Errorf("expected default quality threshold 0.7, got %f", s.QualityThreshold)
	}
	if s.MaxDemos != 4 {
		t.Errorf("expected default max demos 4, got %d", s.MaxDemos)
	}
	if s.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", s.Timeout)
	}
}

func TestSettingsCopy(t *testing.T) {
	s := NewSettings()
	s.Temperature = 0.7
	s.MaxDemos = 8
	s.Experimental["test"] = "value"

	s2 := s.Copy()

	if s2.Temperature != s.Temperature {
		t.Errorf("temperature not copied: got %f, want %f", s2.Temperature, s.Temperature)
	}
	if s2.MaxDemos != s.MaxDemos {
		t.Errorf("max demos not copied: got %d, want %d", s2.MaxDemos, s.MaxDemos)
	}
	if s2.Experimental["test"] != "value" {
		t.Error("experimental map not copied")
	}

	s2.Temperature = 0.9
	if s.Temperature == 0.9 {
		t.Error("modifying copy affected original")
	}
}

func TestSettingsOptions(t *testing.T) {
	tests := []struct {
		name   string
		option SettingsOption
		check  func(*testing.T, *Settings)
	}{
		{
			name:   "WithTemperature",
			option: WithTemperature(0.8),
			check: func(t *testing.T, s *Settings) {
				if s.Temperature != 0.8 {
					t.Errorf("expected temperature 0.8, got %f", s.Temperature)
				}
			},
		},
		{
			name:   "WithQualityThreshold",
			option: WithQualityThreshold(0.9),
			check: func(t *testing.T, s *Settings) {
				if s.QualityThreshold != 0.9 {
					t.Errorf("expected quality threshold 0.9, got %f", s.QualityThreshold)
				}
			},
		},
		{
			name:   "WithMaxDemos",
			option: WithMaxDemos(2),
			check: func(t *testing.T, s *Settings) {
				if s.MaxDemos != 2 {
					t.Errorf("expected max demos 2, got %d", s.MaxDemos)
				}
			},
		},
		{
			name:   "WithTimeout",
			option: WithTimeout(60 * time.Second),
			check: func(t *testing.T, s *Settings) {
				if s.Timeout != 60*time.Second {
					t.Errorf("expected timeout 60s, got %v", s.Timeout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings()
			tt.option(s)
			tt.check(t, s)
		})
	}
}

func TestConfigure(t *testing.T) {
	original := GetSettings().Copy()
	defer SetSettings(original)

	Configure(
		WithTemperature(0.5),
		WithMaxDemos(6),
	)

	s := GetSettings()
	if s.Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %f", s.Temperature)
	}
	if s.MaxDemos != 6 {
		t.Errorf("expected max demos 6, got %d", s.MaxDemos)
	}
}

func TestContext(t *testing.T) {
	ctx := Context(
		context.Background(),
		WithTemperature(0.9),
		WithMaxDemos(9),
	)

	s := SettingsFromContext(ctx)
	if s.Temperature != 0.9 {
		t.Errorf("expected temperature 0.9, got %f", s.Temperature)
	}
	if s.MaxDemos != 9 {
		t.Errorf("expected max demos 9, got %d", s.MaxDemos)
	}

	global := GetSettings()
	if global.Temperature == 0.9 {
		t.Error("global settings should not be affected by context")
	}
}

func TestSettingsFromContext_NoSettings(t *testing.T) {
	ctx := context.Background()
	s := SettingsFromContext(ctx)
	if s == nil {
		t.Fatal("expected non-nil settings")
	}
}
