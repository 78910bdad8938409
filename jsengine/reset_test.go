package jsengine_test

import (
	"testing"

	"github.com/sitepipe/pipeline/jsengine"
)

func TestNewUsesDefaultFactoryWhenNameEmpty(t *testing.T) {
	defer jsengine.Reset()

	jsengine.Register("v8", func() (any, error) { return "v8-engine", nil })
	jsengine.SetDefault("v8")

	got, err := jsengine.New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v8-engine" {
		t.Errorf("want v8-engine, got %v", got)
	}
}

func TestNewUnknownFactoryReturnsError(t *testing.T) {
	defer jsengine.Reset()

	if _, err := jsengine.New("does-not-exist"); err == nil {
		t.Fatal("expected an error for an unregistered engine name")
	}
}

func TestResetClearsRegistryAndDefault(t *testing.T) {
	jsengine.Register("v8", func() (any, error) { return "v8-engine", nil })
	jsengine.SetDefault("v8")

	jsengine.Reset()

	if _, err := jsengine.New(""); err == nil {
		t.Fatal("expected Reset to clear the default factory")
	}
}
