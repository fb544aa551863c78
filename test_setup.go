package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	// Test MongoDB
	fmt.Println("Testing MongoDB connection...")
	mongoURI := os.Getenv("MONGO_URI")
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("MongoDB connection failed:", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(context.Background(), nil); err != nil {
		log.Fatal("MongoDB ping failed:", err)
	}
	fmt.Println("✅ MongoDB connected successfully!")

	// Test Cloudinary
	fmt.Println("\nTesting Cloudinary connection...")
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		log.Fatal("Cloudinary credentials missing in .env")
	}

	cldURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)
	cld, err := cloudinary.NewFromURL(cldURL)
	if err != nil {
		log.Fatal("Cloudinary initialization failed:", err)
	}

	if cld.Config.Cloud.CloudName != cloudName {
		log.Fatal("Cloudinary config mismatch")
	}
	fmt.Println("✅ Cloudinary connected successfully!")

	// Test the CV classification service
	fmt.Println("\nTesting CV service...")
	cvURL := os.Getenv("CV_SERVICE_URL")
	if cvURL == "" {
		cvURL = "http://localhost:5000"
	}
	httpClient := &http.Client{Timeout: 5 * time.Second}
	if resp, err := httpClient.Get(cvURL + "/health"); err != nil {
		fmt.Println("⚠️  CV service unreachable (audits will use fallback verdicts):", err)
	} else {
		resp.Body.Close()
		fmt.Println("✅ CV service reachable!")
	}

	// OpenAI key presence (no request is made)
	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Println("⚠️  OPENAI_API_KEY not set, document extraction and verdicts will use fallbacks")
	} else {
		fmt.Println("✅ OpenAI API key configured!")
	}

	fmt.Println("\n🎉 All systems ready! You can start the API server.")
}
