package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/digitml/mnistserve/internal/handlers"
	"github.com/digitml/mnistserve/internal/model"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", "", "Listen address (default :$PORT or :8080)")
		modelPath  = flag.String("model", "models/mnist_net.gob", "Path to the model weights")
		backend    = flag.String("backend", "native", "Inference backend: native or onnx")
		enableCORS = flag.Bool("cors", true, "Allow cross-origin requests")
		staticDir  = flag.String("static", "", "Serve a static frontend from this directory instead of the built-in page")
	)
	flag.Parse()

	if *addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		*addr = ":" + port
	}

	log.Printf("Loading model from: %s (backend: %s)", *modelPath, *backend)

	var predictor model.Predictor
	var err error
	switch *backend {
	case "native":
		predictor, err = model.NewNativePredictor(*modelPath)
	case "onnx":
		predictor, err = model.NewONNXPredictor(*modelPath)
	default:
		log.Fatalf("Unknown backend %q (want native or onnx)", *backend)
	}
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}

	classifier := model.NewClassifier(predictor)
	defer classifier.Close()

	handler := handlers.NewHandler(classifier)

	r := mux.NewRouter()
	r.Use(handlers.Metrics)
	if *enableCORS {
		r.Use(handlers.CORS)
	}

	r.HandleFunc("/predict", handler.Predict).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if *staticDir != "" {
		if _, err := os.Stat(*staticDir); err != nil {
			log.Fatalf("Static directory not usable: %v", err)
		}
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(*staticDir)))
	} else {
		r.HandleFunc("/", handler.Home).Methods(http.MethodGet)
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         *addr,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Printf("Server starting on %s", *addr)
	log.Println("Endpoints:")
	log.Println("  GET  /        - Upload page")
	log.Println("  GET  /health  - Health check")
	log.Println("  GET  /metrics - Prometheus metrics")
	log.Println("  POST /predict - Predict digit from image upload")

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
