package views

import "testing"

func TestCategoryBackground(t *testing.T) {
	tests := map[string]string{
		"CTG1":  "linear-gradient(to right, #3D5E85, #5E7DA0)",
		"CTG-2": "linear-gradient(to right, #256F93, #5B97B5)",
		"ctg3":  "linear-gradient(to right, #1C434F, #0A5166)",
		"":      "linear-gradient(to right, #3D5E85, #5E7DA0)",
		"CTG9":  "linear-gradient(to right, #3D5E85, #5E7DA0)",
	}
	for in, want := range tests {
		if got := string(CategoryBackground(in)); got != want {
			t.Errorf("CategoryBackground(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAvatar(t *testing.T) {
	if Avatar("") != PlaceholderAvatar {
		t.Error("empty url should use the placeholder")
	}
	if got := Avatar("https://drive.google.com/thumbnail?id=x"); got != "https://drive.google.com/thumbnail?id=x" {
		t.Errorf("Avatar = %q", got)
	}
}
