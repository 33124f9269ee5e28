package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"srg/automation"
	"srg/config"
	"srg/database"
	"srg/model"
	"srg/process"
	"srg/report"
	"srg/task"
)

const settingsPath = "settings.json"

// App holds the shared state the HTTP handlers and CLI stages close
// over. Accounts live only in this struct; they are never written to
// disk.
type App struct {
	db     *sqlx.DB
	runner *task.Runner

	mu       sync.Mutex
	cfg      config.Config
	accounts map[string]model.Account
}

func (a *App) configSnapshot() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

func (a *App) currentAccounts() []model.Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	accounts := make([]model.Account, 0, len(a.accounts))
	for _, acct := range a.accounts {
		accounts = append(accounts, acct)
	}
	return accounts
}

func main() {
	var (
		collectFlag = flag.Bool("collect", false, "run the collection stage and exit")
		processFlag = flag.Bool("process", false, "run the processing stage and exit")
		reportFlag  = flag.Bool("report", false, "run the report stage and exit")
		allFlag     = flag.Bool("all", false, "run collect, process and report in sequence and exit")
		months      = flag.Int("months", 0, "months of data to collect (0 = configured default)")
		quiet       = flag.Bool("quiet", false, "suppress log output")
	)
	flag.Parse()

	if *quiet {
		log.SetOutput(io.Discard)
	}

	staged := 0
	for _, f := range []bool{*collectFlag, *processFlag, *reportFlag, *allFlag} {
		if f {
			staged++
		}
	}
	if staged > 1 {
		fmt.Fprintln(os.Stderr, "only one of -collect, -process, -report, -all may be given")
		os.Exit(2)
	}

	cfg, err := config.Load(settingsPath)
	if err != nil {
		log.Printf("WARN: settings file: %v. Using defaults.", err)
	}

	log.Println("Connecting to database...")
	dbConn, err := sqlx.Open("sqlite3", cfg.Paths.Database+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer dbConn.Close()

	if err := database.InitDatabase(dbConn); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	log.Println("Database initialization complete.")

	app := &App{
		db:       dbConn,
		runner:   task.NewRunner(),
		cfg:      cfg,
		accounts: make(map[string]model.Account),
	}

	if staged == 1 {
		os.Exit(app.runStages(*collectFlag || *allFlag, *processFlag || *allFlag, *reportFlag || *allFlag, *months))
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("./static")))
	SetupRoutes(mux, app)

	addr := "localhost:8080"
	log.Printf("Starting server on http://%s", addr)
	openBrowser("http://" + addr)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server start error: %v", err)
	}
}

// runStages executes the requested stages in order and returns the
// process exit code: 0 only when every requested stage succeeded.
func (a *App) runStages(collect, proc, rep bool, months int) int {
	type result struct {
		name string
		err  error
	}
	var results []result

	if collect {
		_, err := a.runCollect(a.envAccounts(), months)
		results = append(results, result{"collect", err})
	}
	if proc {
		_, err := a.runProcess()
		results = append(results, result{"process", err})
	}
	if rep {
		_, err := a.runReport()
		results = append(results, result{"report", err})
	}

	code := 0
	for _, r := range results {
		if r.err != nil {
			log.Printf("stage %s: FAILED: %v", r.name, r.err)
			code = 1
		} else {
			log.Printf("stage %s: ok", r.name)
		}
	}
	return code
}

// envAccounts builds login accounts for unattended runs: user ids come
// from the settings file, passwords from SRG_PASSWORD_<company>
// environment variables. Nothing is written back.
func (a *App) envAccounts() []model.Account {
	cfg := a.configSnapshot()
	var accounts []model.Account
	for _, saved := range cfg.Accounts {
		pass := os.Getenv("SRG_PASSWORD_" + saved.Company)
		if pass == "" {
			log.Printf("WARN: no SRG_PASSWORD_%s set; skipping %s", saved.Company, saved.Company)
			continue
		}
		accounts = append(accounts, model.Account{
			Company:  saved.Company,
			UserID:   saved.UserID,
			Password: pass,
		})
	}
	return accounts
}

func (a *App) runCollect(accounts []model.Account, months int) (string, error) {
	cfg := a.configSnapshot()
	collector := automation.NewCollector(&cfg)

	sales, err := collector.CollectSales(accounts, months)
	if err != nil {
		return "", err
	}
	recv, err := collector.CollectReceivables(accounts)
	if err != nil {
		log.Printf("WARN: receivables: %v", err)
		recv = &automation.Stats{}
	}
	return fmt.Sprintf("%d sales + %d receivables file(s) downloaded", sales.Downloads, recv.Downloads), nil
}

func (a *App) runProcess() (string, error) {
	cfg := a.configSnapshot()
	res, err := process.Run(a.db, &cfg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d record(s) from %d file(s)", res.Records, res.Files), nil
}

func (a *App) runReport() (string, error) {
	cfg := a.configSnapshot()
	path, err := report.Run(a.db, &cfg)
	if err != nil {
		return "", err
	}
	return "report written: " + path, nil
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		log.Printf("failed to open browser: %v", err)
	}
}
