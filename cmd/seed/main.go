package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sharebite/internal/config"
	"sharebite/internal/db"
	"sharebite/internal/model"
	"sharebite/internal/repository"
)

// Seeds a demo donor, demo collector, and a handful of sample listings so a
// fresh database has something to render. Safe to run repeatedly.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Ngo{}, &model.FoodListing{}, &model.ClaimRecord{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	listingRepo := repository.NewListingRepository(gormDB)

	donor := ensureUser(ctx, userRepo, "Demo Donor", "demo-donor@sharebite.local", model.RoleDonor)
	ensureUser(ctx, userRepo, "Demo Collector", "demo-collector@sharebite.local", model.RoleCollector)

	existing, err := listingRepo.List(ctx, repository.ListingFilter{})
	if err != nil {
		log.Fatalf("Failed to list existing listings: %v", err)
	}
	for _, listing := range existing {
		if listing.DonorID == donor.ID {
			log.Println("Demo listings already present, nothing to do")
			return
		}
	}

	samples := []model.FoodListing{
		{
			FoodType:       "Fresh Bread",
			Quantity:       "10 loaves",
			Category:       "bakery",
			Description:    "Sourdough and whole wheat from today's bake",
			FreshUntil:     time.Now().Add(6 * time.Hour),
			PickupTime:     "Today, 6pm-8pm",
			PickupLocation: "Corner Bakery, 12 Main St",
			ContactInfo:    "+1 555 0100",
			Photos:         "[]",
			DonorID:        donor.ID,
			Status:         model.ListingStatusAvailable,
		},
		{
			FoodType:       "Vegetable Curry",
			Quantity:       "8 portions",
			Category:       "cooked",
			Description:    "Surplus from lunch service, refrigerated",
			FreshUntil:     time.Now().Add(6 * time.Hour),
			PickupTime:     "Today, before 9pm",
			PickupLocation: "Green Leaf Cafe, 45 Oak Ave",
			ContactInfo:    "+1 555 0101",
			Photos:         "[]",
			DonorID:        donor.ID,
			Status:         model.ListingStatusAvailable,
		},
		{
			FoodType:       "Mixed Fruit",
			Quantity:       "5 kg",
			Category:       "produce",
			Description:    "Slightly bruised but fresh apples and bananas",
			FreshUntil:     time.Now().Add(24 * time.Hour),
			PickupTime:     "Tomorrow morning",
			PickupLocation: "Fresh Mart, 3 Station Rd",
			ContactInfo:    "+1 555 0102",
			Photos:         "[]",
			DonorID:        donor.ID,
			Status:         model.ListingStatusAvailable,
		},
	}

	for i := range samples {
		if err := listingRepo.Create(ctx, &samples[i]); err != nil {
			log.Fatalf("Failed to create sample listing: %v", err)
		}
	}
	log.Printf("Created %d sample listings", len(samples))
}

func ensureUser(ctx context.Context, repo repository.UserRepository, name, email string, role model.Role) *model.User {
	user, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return user
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to look up %s: %v", email, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	user = &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create %s: %v", email, err)
	}
	log.Printf("Created %s account %s", role, email)
	return user
}
