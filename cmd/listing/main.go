package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"listingstudio.app/studio/common/id"
	"listingstudio.app/studio/common/llm"
	"listingstudio.app/studio/core/config"
	"listingstudio.app/studio/internal/gateway"
	"listingstudio.app/studio/internal/listing"
	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/service"
	"listingstudio.app/studio/internal/session"
	"listingstudio.app/studio/internal/staging"
)

const help = `Commands:
  photos <file> [file...]   set the photos (3-8)
  address <text>            set the address
  category <apartment|house|land>
  layout <text|->           set or clear the layout, e.g. 2+kk
  size <m2|->               set or clear the size
  highlights <text|->       set or clear the key features
  form                      show the current form
  generate                  generate or refine the listing
  describe                  regenerate only the description
  stage <index> [index...]  virtually stage photos into $STAGING_OUT_DIR
  reset                     forget the listing
  quit`

func main() {
	ctx := context.Background()

	// Load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := id.Init(cfg.NodeID); err != nil {
		fmt.Fprintf(os.Stderr, "id: %v\n", err)
		os.Exit(1)
	}

	services, err := newServices(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	listings := services.Listings()
	stager := services.Staging()
	sess := listings.CreateSession(ctx)

	outDir := getEnv("STAGING_OUT_DIR", "staged")
	form := model.FormSnapshot{Category: model.PropertyCategoryApartment}

	fmt.Fprintf(os.Stderr, "\nListing CLI ready (model=%s, language=%s)\n", cfg.LLM.Model, cfg.Listing.Language)
	fmt.Fprintln(os.Stderr, help)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "quit", "exit", "q":
			fmt.Fprintln(os.Stderr, "Goodbye!")
			return
		case "help":
			fmt.Fprintln(os.Stderr, help)
		case "photos":
			photos, err := loadPhotos(strings.Fields(arg))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			form.Photos = photos
		case "address":
			form.Address = arg
		case "category":
			form.Category = model.PropertyCategory(arg)
		case "layout":
			form.Layout = optional(arg)
		case "highlights":
			form.Highlights = optional(arg)
		case "size":
			if arg == "-" {
				form.Size = nil
				continue
			}
			size, err := strconv.ParseFloat(strings.ReplaceAll(arg, ",", "."), 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid size %q\n", arg)
				continue
			}
			form.Size = &size
		case "form":
			printForm(form)
		case "generate":
			fmt.Fprintln(os.Stderr, "Generating...")
			res, err := listings.Submit(ctx, sess.ID, form)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if res.Outcome.SkipsImageAnalysis {
				fmt.Fprintln(os.Stderr, "(refined from text; location and places kept)")
			}
			printListing(res.Entry.Result)
		case "describe":
			entry, err := listings.RegenerateDescription(ctx, sess.ID, &form)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Println(entry.Result.Description)
		case "stage":
			if err := stage(ctx, stager, sess.ID, arg, outDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case "reset":
			_ = listings.Reset(ctx, sess.ID)
			form = model.FormSnapshot{Category: model.PropertyCategoryApartment}
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q, try help\n", cmd)
		}
	}

	fmt.Fprintln(os.Stderr, "Goodbye!")
}

func newServices(cfg config.Config) (*service.Services, error) {
	textClient, err := llm.NewStructuredClient(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	imageClient, err := llm.NewImageClient(llm.Config{
		Provider: cfg.ImageLLM.Provider,
		APIKey:   cfg.ImageLLM.APIKey,
		BaseURL:  cfg.ImageLLM.BaseURL,
		Model:    cfg.ImageLLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create image client: %w", err)
	}

	gw := gateway.New(textClient, imageClient, gateway.Config{
		MaxTokens:          cfg.LLM.MaxTokens,
		Temperature:        cfg.LLM.Temperature,
		Timeout:            cfg.LLM.Timeout,
		ImageTimeout:       cfg.ImageLLM.Timeout,
		StagingInstruction: cfg.Staging.Instruction,
	})
	composer := listing.NewComposer(listing.ComposerConfig{Language: cfg.Listing.Language, Currency: cfg.Listing.Currency})

	return service.NewServices(
		session.NewRegistry(id.NewString),
		listing.NewGenerator(composer, gw),
		staging.NewOrchestrator(gw, staging.NopPublisher{}, staging.Config{MaxConcurrency: cfg.Staging.MaxConcurrency}),
	), nil
}

func loadPhotos(paths []string) ([]model.Photo, error) {
	photos := make([]model.Photo, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		photos = append(photos, model.Photo{
			PhotoIdentity: model.PhotoIdentity{
				Name:         filepath.Base(p),
				Size:         info.Size(),
				LastModified: info.ModTime().UTC(),
			},
			MimeType: mimeFor(p),
			Data:     data,
		})
	}
	return photos, nil
}

func stage(ctx context.Context, stager service.StagingService, sessionID, arg, outDir string) error {
	var indexes []int
	for _, f := range strings.Fields(arg) {
		i, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("invalid index %q", f)
		}
		indexes = append(indexes, i)
	}

	run, err := stager.Stage(ctx, sessionID, indexes)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for task := range run.Updates() {
		switch task.State {
		case model.TaskStateSucceeded:
			path := filepath.Join(outDir, fmt.Sprintf("staged-%d-%s%s", task.Index,
				strings.TrimSuffix(task.Source.Name, filepath.Ext(task.Source.Name)), extFor(task.Enhanced.MimeType)))
			if err := os.WriteFile(path, task.Enhanced.Data, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "  [%d] %s: write failed: %v\n", task.Index, task.Source.Name, err)
				continue
			}
			fmt.Fprintf(os.Stderr, "  [%d] %s: done -> %s\n", task.Index, task.Source.Name, path)
		case model.TaskStateFailed:
			fmt.Fprintf(os.Stderr, "  [%d] %s: failed: %s\n", task.Index, task.Source.Name, task.Error)
		}
	}
	if run.AnyFailed() {
		fmt.Fprintln(os.Stderr, "Some photos could not be staged.")
	}
	return nil
}

func printForm(f model.FormSnapshot) {
	fmt.Printf("Photos:     %d\n", len(f.Photos))
	for i, p := range f.Photos {
		fmt.Printf("  [%d] %s (%d bytes)\n", i, p.Name, p.Size)
	}
	fmt.Printf("Address:    %s\n", f.Address)
	fmt.Printf("Category:   %s\n", f.Category)
	fmt.Printf("Layout:     %s\n", f.LayoutText())
	fmt.Printf("Size:       %s\n", f.SizeText())
	fmt.Printf("Highlights: %s\n", f.HighlightsText())
}

func printListing(r model.ListingResult) {
	fmt.Printf("\n%s\n\n%s\n\nPrice: %d\nLocation: %.5f, %.5f\n", r.Title, r.Description, r.EstimatedPrice, r.Location.Lat, r.Location.Lng)
	for _, p := range r.NearbyPois {
		fmt.Printf("  - %s (%s)\n", p.Name, p.Type)
	}
	fmt.Println()
}

func optional(arg string) *string {
	if arg == "" || arg == "-" {
		return nil
	}
	return &arg
}

func mimeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func extFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
