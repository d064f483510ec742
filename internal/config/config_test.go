package config

import "testing"

func validBase() Config {
	return Config{
		App: AppConfig{
			Env:                "local",
			Port:               8080,
			PublicBaseURL:      "https://recorder.example.com",
			ServicePhoneNumber: "+19865294217",
		},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "recorder", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_DefaultsEnrichmentAndModel(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.AI.Model != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %q", c.AI.Model)
	}
	if c.Enrichment.Workers != 4 || c.Enrichment.QueueSize != 64 {
		t.Fatalf("expected worker defaults, got %d/%d", c.Enrichment.Workers, c.Enrichment.QueueSize)
	}
}

func TestValidate_TwilioCredentialsMustPair(t *testing.T) {
	c := validBase()
	c.Twilio.AccountSID = "AC123"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for SID without auth token")
	}
}

func TestValidate_RejectsRelativePublicBaseURL(t *testing.T) {
	c := validBase()
	c.App.PublicBaseURL = "recorder.example.com"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for relative base URL")
	}
}

func TestCallbackURLs_CarryCallID(t *testing.T) {
	c := validBase()
	got := c.RecordCompleteURL("abc-123")
	want := "https://recorder.example.com/record-complete?call-uuid=abc-123"
	if got != want {
		t.Fatalf("record callback: got %q want %q", got, want)
	}
	got = c.TranscribeCompleteURL("abc-123")
	want = "https://recorder.example.com/transcribe-complete?call-uuid=abc-123"
	if got != want {
		t.Fatalf("transcribe callback: got %q want %q", got, want)
	}
}
