package identity

import "testing"

func TestIdentifyDeterministic(t *testing.T) {
	a := Identify("originals/2024/IMG_0001.jpg")
	b := Identify("originals/2024/IMG_0001.jpg")
	if a != b {
		t.Errorf("Identify not deterministic: %q != %q", a, b)
	}
}

func TestIdentifyDistinctPaths(t *testing.T) {
	a := Identify("originals/2024/IMG_0001.jpg")
	b := Identify("originals/2024/IMG_0002.jpg")
	if a == b {
		t.Error("Identify produced the same id for two different paths")
	}
}

func TestIdentifyPathSensitive(t *testing.T) {
	a := Identify("originals/IMG_0001.jpg")
	b := Identify("IMG_0001.jpg")
	if a == b {
		t.Error("Identify should be sensitive to the full relative path, not just the basename")
	}
}

func TestVariantIDDeterministic(t *testing.T) {
	imageID := Identify("originals/2024/IMG_0001.jpg")
	a := VariantID(imageID, "thumbnail")
	b := VariantID(imageID, "thumbnail")
	if a != b {
		t.Errorf("VariantID not deterministic: %q != %q", a, b)
	}
}

func TestVariantIDDistinctTypes(t *testing.T) {
	imageID := Identify("originals/2024/IMG_0001.jpg")
	thumb := VariantID(imageID, "thumbnail")
	display := VariantID(imageID, "display")
	if thumb == display {
		t.Error("VariantID produced the same id for two different variant types")
	}
}

func TestVariantIDDistinctFromImageID(t *testing.T) {
	imageID := Identify("originals/2024/IMG_0001.jpg")
	variant := VariantID(imageID, "thumbnail")
	if variant == imageID {
		t.Error("VariantID should never collide with its owning image's id")
	}
}
