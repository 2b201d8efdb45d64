package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/juveboxd-backend/config"
	"github.com/ikkim/juveboxd-backend/internal/app"
	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/internal/app/service"
	"github.com/ikkim/juveboxd-backend/internal/export"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
)

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	reviews, err := export.ReadWorkbook(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total reviews to import: %d (backend: %s)\n", len(reviews), cfg.Store.Backend)

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	backend, err := app.OpenBackend(cfg)
	if err != nil {
		log.Fatal("Failed to open review backend:", err)
	}
	defer backend.Close()

	imported, skipped := importReviews(context.Background(), service.NewReviewService(backend.Store, nil), reviews)

	fmt.Println("Import completed!")
	fmt.Printf("Imported: %d, skipped: %d\n", imported, skipped)
}

// importReviews submits each row as a new draft. Long comments are clamped, rows
// that still fail are reported and skipped. Sheet ids and timestamps are not kept.
func importReviews(ctx context.Context, reviewService *service.ReviewService, reviews []model.Review) (imported, skipped int) {
	for i, r := range reviews {
		_, err := reviewService.Submit(ctx, model.ReviewDraft{
			Nickname: r.Nickname,
			Rating:   r.Rating,
			Comment:  model.ClampComment(r.Comment),
		})
		if err != nil {
			fmt.Printf("Row %d skipped: %v\n", i+2, err)
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped
}
