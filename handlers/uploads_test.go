package handlers

import "testing"

// The served URL is fixed to the /uploads mount; the on-disk storage
// directory must not leak into it.
func TestPublicUploadUrlIgnoresStorageDir(t *testing.T) {
	for _, dir := range []string{"", "uploads", "/var/lib/retail/files", "data/images"} {
		t.Setenv("UPLOAD_DIR", dir)
		got := publicUploadUrl("products", "product-7-abc123def456.png")
		want := "/uploads/products/product-7-abc123def456.png"
		if got != want {
			t.Fatalf("UPLOAD_DIR=%q: expected %s, got %s", dir, want, got)
		}
	}
}
