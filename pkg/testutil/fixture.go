package testutil

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
)

var (
	User1 = entity.User{
		Base:  entity.Base{ID: "user1"},
		Name:  "user1",
		Email: "user1@example.com",
		Role:  entity.RoleUser,
	}

	User2 = entity.User{
		Base:  entity.Base{ID: "user2"},
		Name:  "user2",
		Email: "user2@example.com",
		Role:  entity.RoleUser,
	}

	Admin = entity.User{
		Base:  entity.Base{ID: "admin"},
		Name:  "admin",
		Email: "admin@example.com",
		Role:  entity.RoleAdmin,
	}

	Category1 = entity.Category{
		Base:      entity.Base{ID: "category1"},
		Name:      "General",
		Icon:      "chat",
		CreatedBy: Admin.ID,
	}
)

func CreateFixtureDb(ctx context.Context) {
	insertUsers(ctx)
	insertCategories(ctx)
}

func insertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()

	for _, user := range []entity.User{User1, User2, Admin} {
		user := user
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}

func insertCategories(ctx context.Context) {
	categoryRepo := repository.NewCategoryRepository()
	category := Category1
	if err := categoryRepo.Create(ctx, &category); err != nil {
		panic(err)
	}
}
