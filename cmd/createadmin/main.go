package main

import (
	"context"
	"flag"
	"log"
	"time"

	"timetrack/internal/config"
	"timetrack/internal/employee"
	"timetrack/internal/policy"
	"timetrack/internal/store"
)

// createadmin seeds an administrator account in the configured database.
func main() {
	var in employee.CreateInput
	flag.StringVar(&in.ID, "id", "", "employee id (generated when empty)")
	flag.StringVar(&in.Email, "email", "", "administrator email")
	flag.StringVar(&in.Password, "password", "", "administrator password")
	flag.StringVar(&in.Name, "name", "Admin", "first name")
	flag.StringVar(&in.Surname, "surname", "User", "surname")
	flag.StringVar(&in.Department, "department", "", "department name")
	flag.Parse()

	if in.Email == "" || in.Password == "" {
		flag.Usage()
		log.Fatal("email and password are required")
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	svc := employee.NewService(employee.NewRepository(db.Client), policy.New(nil))
	admin, err := svc.Bootstrap(ctx, in)
	if err != nil {
		log.Fatalf("create administrator: %v", err)
	}
	log.Printf("administrator %s <%s> created", admin.ID, admin.Email)
}
