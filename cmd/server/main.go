package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/api"
	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
	"github.com/yourusername/mediagrab-go/internal/infrastructure"
	"github.com/yourusername/mediagrab-go/pkg/logger"
)

var (
	serverMode = flag.Bool("server-mode", false, "Internal flag: run in server mode (called by daemon)")
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// If not in server mode, run as daemon
	if !*serverMode {
		startAsDaemon()
		return
	}

	runServer()
}

// startAsDaemon forks the current process and runs the server in background
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	args := []string{"-server-mode"}
	if *configPath != "" {
		args = append(args, "-config", *configPath)
	}

	cmd := exec.Command(execPath, args...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()

	// Detach from the parent session
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open /dev/null: %v\n", err)
		os.Exit(1)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", cmd.Process.Pid)
	os.Exit(0)
}

func runServer() {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting MediaGrab server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port))

	if err := createDirectories(config); err != nil {
		log.Fatal("Failed to create directories", zap.Error(err))
	}

	repo, err := infrastructure.NewSQLiteDownloadRepository(config.Queue.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	notifier := infrastructure.NewNotificationService(&config.Notification, log)

	extractor := infrastructure.NewYTDLPExtractor(&config.Tools, config.Download.LogsDir, log)
	transcoder := infrastructure.NewFFmpegTranscoder(config.Tools.FFmpegBinary, log)

	downloadMgr := app.NewDownloadManager(
		repo,
		app.NewChainRunner(extractor, config.Download.WorkDir, log),
		app.NewMetadataExtractor(extractor, log),
		app.NewFilenameSynthesizer(config.Download.DownloadsRoot),
		app.NewPostProcessor(transcoder, log),
		app.NewResultReporter(log, notifier),
		notifier,
		&config.Download,
		log,
	)

	queueMgr := app.NewQueueManager(repo, downloadMgr, &config.Queue, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Download.AutoStartWorkers {
		if err := queueMgr.Start(ctx); err != nil {
			log.Fatal("Failed to start queue manager", zap.Error(err))
		}
	}

	router := api.SetupRouter(queueMgr, downloadMgr, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal OR auto-exit from queue manager
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case <-queueMgr.WaitForExit():
		log.Info("Queue manager triggered auto-exit (all downloads complete)")
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if queueMgr.IsRunning() {
		if err := queueMgr.Stop(); err != nil {
			log.Error("Error stopping queue manager", zap.Error(err))
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.DownloadsRoot,
		config.Download.WorkDir,
		config.Download.LogsDir,
	}
	for _, platform := range domain.SupportedPlatforms() {
		dirs = append(dirs, filepath.Join(config.Download.DownloadsRoot, platform.DirName()))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
