package domain_test

import (
	"testing"

	"github.com/gamewatch/notifier/internal/domain"
)

func TestNotificationType_IsValid(t *testing.T) {
	valid := []domain.NotificationType{
		domain.NotificationGameReduced,
		domain.NotificationGameReleased,
		domain.NotificationNewMetacriticRating,
		domain.NotificationNewStoreEntry,
		domain.NotificationReleaseDateChanged,
	}
	for _, nt := range valid {
		if !nt.IsValid() {
			t.Fatalf("%q should be valid", nt)
		}
	}
	if domain.NotificationType("price-hike").IsValid() {
		t.Fatal("unknown type should be invalid")
	}
}

func TestEncodePayload_Deterministic(t *testing.T) {
	p := domain.GameReducedPayload{OldPriceCents: 6000, NewPriceCents: 4800, DiscountPercentage: 20}

	a, err := domain.EncodePayload(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := domain.EncodePayload(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !domain.EquivalentPayloads(a, b) {
		t.Fatal("identical payloads must encode identically")
	}

	c, _ := domain.EncodePayload(domain.GameReducedPayload{OldPriceCents: 6000, NewPriceCents: 4500, DiscountPercentage: 25})
	if domain.EquivalentPayloads(a, c) {
		t.Fatal("different payloads must not be equivalent")
	}
}

func TestCreateNotificationsRequest_Validate(t *testing.T) {
	valid := domain.CreateNotificationsRequest{
		SourceID:         "source-1",
		ExistingGameData: []byte(`{"id":"620"}`),
		ResolvedGameData: []byte(`{"id":"620"}`),
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing existing data is allowed", func(t *testing.T) {
		r := valid
		r.ExistingGameData = nil
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty source id", func(t *testing.T) {
		r := valid
		r.SourceID = ""
		if err := r.Validate(); err != domain.ErrInvalidSourceID {
			t.Fatalf("expected ErrInvalidSourceID, got %v", err)
		}
	})

	t.Run("missing resolved data", func(t *testing.T) {
		r := valid
		r.ResolvedGameData = nil
		if err := r.Validate(); err != domain.ErrMissingResolvedData {
			t.Fatalf("expected ErrMissingResolvedData, got %v", err)
		}
	})

	t.Run("null resolved data", func(t *testing.T) {
		r := valid
		r.ResolvedGameData = []byte(`null`)
		if err := r.Validate(); err != domain.ErrMissingResolvedData {
			t.Fatalf("expected ErrMissingResolvedData, got %v", err)
		}
	})

	t.Run("malformed resolved data", func(t *testing.T) {
		r := valid
		r.ResolvedGameData = []byte(`{"id":`)
		if err := r.Validate(); err != domain.ErrMalformedGameData {
			t.Fatalf("expected ErrMalformedGameData, got %v", err)
		}
	})

	t.Run("malformed existing data", func(t *testing.T) {
		r := valid
		r.ExistingGameData = []byte(`{{`)
		if err := r.Validate(); err != domain.ErrMalformedGameData {
			t.Fatalf("expected ErrMalformedGameData, got %v", err)
		}
	})
}

func TestJob_HasExistingData(t *testing.T) {
	j := domain.Job{}
	if j.HasExistingData() {
		t.Fatal("nil existing data")
	}
	j.ExistingData = []byte(`null`)
	if j.HasExistingData() {
		t.Fatal("JSON null counts as absent")
	}
	j.ExistingData = []byte(`{}`)
	if !j.HasExistingData() {
		t.Fatal("object counts as present")
	}
}

func TestIsSchemaError(t *testing.T) {
	if !domain.IsSchemaError(domain.ErrMalformedGameData) {
		t.Fatal("malformed data is a schema error")
	}
	if !domain.IsSchemaError(domain.ErrUnknownSourceType) {
		t.Fatal("unknown source type is a schema error")
	}
	if domain.IsSchemaError(domain.ErrNotFound) {
		t.Fatal("not-found is transient, not schema")
	}
}
