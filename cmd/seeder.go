package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/Yaroslav326/TaskManagement/internal/chat"
	"github.com/Yaroslav326/TaskManagement/internal/company"
	"github.com/Yaroslav326/TaskManagement/internal/task"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"messages", "subtasks", "tasks",
				"department_personnel", "departments", "companies", "users",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		owner := seedUser(db, "yaroslav", "yaroslav@mail.com", string(hash))
		employee := seedUser(db, "marina", "marina@mail.com", string(hash))

		var c company.Company
		err = db.Where("owner_id = ?", owner.ID).First(&c).Error
		if err != nil {
			c = company.Company{Name: "Demo Company", OwnerID: owner.ID}
			if err := db.Create(&c).Error; err != nil {
				log.Fatalf("failed to seed company: %v", err)
			}

			dept := company.Department{Name: company.DefaultDepartmentName, CompanyID: c.ID}
			if err := db.Create(&dept).Error; err != nil {
				log.Fatalf("failed to seed department: %v", err)
			}
			if err := db.Model(&dept).Association("Personnel").Append(owner, employee); err != nil {
				log.Fatalf("failed to seed personnel: %v", err)
			}
			fmt.Println("Seeded company:", c.Name)
		}

		var count int64
		db.Model(&task.Task{}).Where("customer_id = ?", owner.ID).Count(&count)
		if count == 0 {
			t := task.Task{
				Title:      "Prepare quarterly report",
				Status:     task.StatusTodo,
				DateStart:  time.Now().UTC(),
				CustomerID: owner.ID,
			}
			if err := db.Create(&t).Error; err != nil {
				log.Fatalf("failed to seed task: %v", err)
			}
			st := task.Subtask{TaskID: t.ID, Title: "Collect department numbers"}
			if err := db.Create(&st).Error; err != nil {
				log.Fatalf("failed to seed subtask: %v", err)
			}
			fmt.Println("Seeded task:", t.Title)
		}

		db.Model(&chat.Message{}).Where("company_id = ?", c.ID).Count(&count)
		if count == 0 {
			msg := chat.Message{
				Body:      "Welcome to the company chat",
				UserID:    owner.ID,
				CompanyID: c.ID,
			}
			if err := db.Create(&msg).Error; err != nil {
				log.Fatalf("failed to seed message: %v", err)
			}
		}

		fmt.Println("Seeding complete")
	},
}

func seedUser(db *gorm.DB, username, email, passwordHash string) *user.User {
	var u user.User
	if err := db.Where("email = ?", email).First(&u).Error; err == nil {
		fmt.Println("user already exists:", email)
		return &u
	}

	u = user.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
	return &u
}
