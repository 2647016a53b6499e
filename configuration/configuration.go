package configuration

import (
	"log"
	"os"

	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// hold connection to db
var DB *gorm.DB

// initializing db connection
func ConfigDB() {

	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, reading config from environment")
	}
	dsn := os.Getenv("DB")
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("Failed to connect to the database")
	}

	DB.AutoMigrate(
		&models.Donor{},
		&models.Hospital{},
		&models.Admin{},
		&models.BloodCamp{},
		&models.InterestEntry{},
		&models.BloodRequest{},
		&models.RequestNotification{},
		&models.DonorResponse{},
		&models.Feedback{},
		&models.History{},
	)

}
