package auth

import "testing"

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := HashPassword("benchmark-password-1"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyPassword(b *testing.B) {
	hash, err := HashPassword("benchmark-password-1")
	if err != nil {
		b.Fatal(err)
	}

	for i := 0; i < b.N; i++ {
		if !VerifyPassword("benchmark-password-1", hash) {
			b.Fatal("verification failed")
		}
	}
}

func BenchmarkSanitizeForLike(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SanitizeForLike("bob+spam%_<script>@test.com")
	}
}
