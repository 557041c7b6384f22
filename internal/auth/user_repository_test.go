package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestUserRepository_CreateAndGetByUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("Password123")
	user := &User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hash,
		Role:         RoleUser,
	}

	id, err := repo.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Create() should return a generated numeric id")
	}
	if user.ID != id {
		t.Errorf("Create() should set user.ID, got %d want %d", user.ID, id)
	}

	got, err := repo.GetByUsername(ctx, "testuser")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}

	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if got.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "test@example.com")
	}
	if got.Role != RoleUser {
		t.Errorf("Role = %q, want %q", got.Role, RoleUser)
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash should be populated")
	}
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByUsername(context.Background(), "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_GetByUsername_InjectionText(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "alice", "alice@example.com", "Password123", RoleUser)

	// Parameterized lookup treats the whole string as a literal username.
	_, err := repo.GetByUsername(ctx, "alice' OR 1=1 --")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("injection-style lookup should find nothing, got error = %v", err)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("Password123")
	user1 := &User{Username: "duplicate", Email: "one@example.com", PasswordHash: hash, Role: RoleUser}
	if _, err := repo.Create(ctx, user1); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user2 := &User{Username: "duplicate", Email: "two@example.com", PasswordHash: hash, Role: RoleUser}
	_, err := repo.Create(ctx, user2)
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("error = %v, want ErrUsernameExists", err)
	}

	// Exactly one record survives the collision.
	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1 after duplicate create", count)
	}
}

func TestUserRepository_ConcurrentDuplicateCreate(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, _ := HashPassword("Password123")

	// Two writers race on the same username; the unique index must
	// resolve them to exactly one success and one ErrUsernameExists.
	const writers = 2
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := &User{
				Username:     "racer",
				Email:        fmt.Sprintf("racer%d@example.com", n),
				PasswordHash: hash,
				Role:         RoleUser,
			}
			_, err := repo.Create(ctx, user)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var successes, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrUsernameExists):
			duplicates++
		default:
			t.Errorf("unexpected error from concurrent Create: %v", err)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Errorf("got %d successes and %d duplicates, want exactly 1 of each", successes, duplicates)
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1 after concurrent duplicate create", count)
	}
}

func TestUserRepository_CreateLegacy_NoPassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &User{Username: "legacy", Email: "legacy@example.com"}
	if _, err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByUsername(ctx, "legacy")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.PasswordHash != "" {
		t.Errorf("legacy record should have empty password hash, got %q", got.PasswordHash)
	}
	// NULL role reads back as the default.
	if got.Role != RoleUser {
		t.Errorf("Role = %q, want %q", got.Role, RoleUser)
	}
}

func TestUserRepository_SearchByEmail(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "bob", "bob@test.com", "Password123", RoleUser)
	seedTestUser(t, db, "carol", "carol@other.org", "Password123", RoleUser)

	users, err := repo.SearchByEmail(ctx, "test.com")
	if err != nil {
		t.Fatalf("SearchByEmail() error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("SearchByEmail(test.com) = %v, want exactly bob", users)
	}
}

func TestUserRepository_SearchByEmail_WildcardInjection(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "bob", "bob@test.com", "Password123", RoleUser)
	seedTestUser(t, db, "carol", "carol@other.org", "Password123", RoleUser)

	// Hostile fragment: the quote and % are stripped before matching,
	// so the search cannot be widened to every record.
	users, err := repo.SearchByEmail(ctx, "test.com'%")
	if err != nil {
		t.Fatalf("SearchByEmail() error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("SearchByEmail(test.com'%%) = %v, want exactly bob", users)
	}
}

func TestUserRepository_SearchByEmail_NoMatches(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	users, err := repo.SearchByEmail(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("SearchByEmail() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("SearchByEmail() = %v, want empty", users)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "passchange", "pc@example.com", "OldPassword1", RoleUser)

	newHash, _ := HashPassword("NewPassword1")
	if err := repo.UpdatePassword(ctx, "passchange", newHash); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, _ := repo.GetByUsername(ctx, "passchange")
	if !VerifyPassword("NewPassword1", got.PasswordHash) {
		t.Error("new password should verify after UpdatePassword")
	}
	if VerifyPassword("OldPassword1", got.PasswordHash) {
		t.Error("old password should no longer verify")
	}
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	hash, _ := HashPassword("Whatever12")
	err := repo.UpdatePassword(context.Background(), "ghost", hash)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_SetRole(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "promotee", "p@example.com", "Password123", RoleUser)

	if err := repo.SetRole(ctx, "promotee", RoleAdmin); err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}

	got, _ := repo.GetByUsername(ctx, "promotee")
	if got.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", got.Role, RoleAdmin)
	}
}

func TestUserRepository_SetRole_RejectsUnknownRole(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "victim", "v@example.com", "Password123", RoleUser)

	err := repo.SetRole(ctx, "victim", Role("superuser"))
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("error = %v, want ErrInvalidRole", err)
	}

	got, _ := repo.GetByUsername(ctx, "victim")
	if got.Role != RoleUser {
		t.Errorf("Role = %q, unrecognised role must never be persisted", got.Role)
	}
}

func TestUserRepository_List_OrderedByUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Empty list
	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("List() should return empty, got %d", len(users))
	}

	// Insert out of order
	for _, name := range []string{"charlie", "alice", "bob"} {
		seedTestUser(t, db, name, name+"@example.com", "Password123", RoleUser)
	}

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("List() returned %d users, want 3", len(users))
	}
	for i, want := range []string{"alice", "bob", "charlie"} {
		if users[i].Username != want {
			t.Errorf("List()[%d] = %q, want %q (ascending username order)", i, users[i].Username, want)
		}
	}
}
