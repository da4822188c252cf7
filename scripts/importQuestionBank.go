package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"prepdesk/config"
	"prepdesk/database"
	"prepdesk/models"
)

// bankEntry mirrors one question in the per-category bank files
type bankEntry struct {
	Question string `json:"Question"`
	Options  []struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
	} `json:"Options"`
	CorrectAnswer string   `json:"CorrectAnswer"`
	Explanation   string   `json:"Explanation"`
	Difficulty    string   `json:"Difficulty"`
	Job           []string `json:"Job"`
}

func main() {
	// Load config and connect to database
	config.LoadConfig()
	db := database.ConnectDb()

	dir := config.AppConfig.QuestionBankDir
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		log.Fatalf("No question bank files found in %s", dir)
	}

	for _, file := range files {
		categoryName := strings.TrimSuffix(filepath.Base(file), ".json")
		log.Printf("Importing %s...", file)

		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Failed to read %s: %v", file, err)
			continue
		}

		var entries []bankEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			log.Printf("Failed to parse %s: %v", file, err)
			continue
		}

		// Find or create the category
		var category models.Category
		if err := db.Where("name = ?", categoryName).First(&category).Error; err != nil {
			category = models.Category{Name: categoryName, IsActive: true}
			if err := db.Create(&category).Error; err != nil {
				log.Printf("Failed to create category %s: %v", categoryName, err)
				continue
			}
		}

		inserted := 0
		skipped := 0

		for _, entry := range entries {
			if strings.TrimSpace(entry.Question) == "" || len(entry.Options) == 0 {
				skipped++
				continue
			}

			// Skip questions already imported
			var count int64
			db.Model(&models.Question{}).
				Where("category_id = ? AND prompt = ?", category.ID, entry.Question).
				Count(&count)
			if count > 0 {
				skipped++
				continue
			}

			correctID, correctText := resolveCorrect(entry)
			if correctID == 0 {
				log.Printf("No matching correct option for question %q, skipping", entry.Question)
				skipped++
				continue
			}

			topic := ""
			if len(entry.Job) > 0 {
				topic = entry.Job[0]
			}

			difficulty := strings.ToLower(entry.Difficulty)
			if difficulty == "" {
				difficulty = "medium"
			}

			question := models.Question{
				CategoryID:        category.ID,
				Topic:             topic,
				Prompt:            entry.Question,
				CorrectOptionID:   correctID,
				CorrectAnswerText: correctText,
				Explanation:       entry.Explanation,
				Difficulty:        difficulty,
				Marks:             1,
				IsActive:          true,
			}
			for _, opt := range entry.Options {
				question.Options = append(question.Options, models.QuestionOption{
					OptionID: opt.ID,
					Text:     opt.Text,
				})
			}

			if err := db.Create(&question).Error; err != nil {
				log.Printf("Failed to insert question %q: %v", entry.Question, err)
				skipped++
				continue
			}
			inserted++
		}

		log.Printf("Category %s: %d inserted, %d skipped", categoryName, inserted, skipped)
	}

	log.Println("Question bank import completed.")
}

// resolveCorrect maps an entry's CorrectAnswer (option text, or an option id
// as a bare number) to the option id and text stored on the question
func resolveCorrect(entry bankEntry) (int, string) {
	answer := strings.TrimSpace(entry.CorrectAnswer)

	for _, opt := range entry.Options {
		if strings.EqualFold(strings.TrimSpace(opt.Text), answer) {
			return opt.ID, opt.Text
		}
	}

	if id, err := strconv.Atoi(answer); err == nil {
		for _, opt := range entry.Options {
			if opt.ID == id {
				return opt.ID, opt.Text
			}
		}
	}

	return 0, ""
}
