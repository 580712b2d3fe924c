package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dougsko/yaesutool/pkg/clone"
	"github.com/dougsko/yaesutool/pkg/config"
	"github.com/dougsko/yaesutool/pkg/image"
	"github.com/dougsko/yaesutool/pkg/logging"
	"github.com/dougsko/yaesutool/pkg/radio"
	_ "github.com/dougsko/yaesutool/pkg/radio/ft60"
	_ "github.com/dougsko/yaesutool/pkg/radio/vx2"
	"github.com/dougsko/yaesutool/pkg/storage"
	"github.com/dougsko/yaesutool/pkg/textio"
	"github.com/dougsko/yaesutool/pkg/verbose"
)

var version = "1.0.0"

var (
	configPath  = flag.String("config", "", "YAML configuration file")
	devicePath  = flag.String("device", "", "serial device (overrides config)")
	modelName   = flag.String("model", "", "radio model, e.g. 'VX-2' or 'FT-60R'")
	readRadio   = flag.Bool("read", false, "read memory image from the radio into <image>")
	writeRadio  = flag.Bool("write", false, "write memory image <image> to the radio")
	contWrite   = flag.Bool("continue", false, "with -write: the radio is already in clone mode")
	importPath  = flag.String("import", "", "apply text configuration file to <image>")
	note        = flag.String("note", "", "note stored with the archived snapshot")
	listModels  = flag.Bool("list", false, "list supported radio models")
	listArchive = flag.Bool("snapshots", false, "list archived memory snapshots")
	restoreID   = flag.Int64("restore", 0, "restore archived snapshot <id> into <image>")
	verboseFlag = flag.Bool("verbose", false, "trace the clone protocol, expand exports")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Usage = showHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("yaesutool %s\n", version)
		return
	}
	if *listModels {
		for _, d := range radio.List() {
			fmt.Printf("%-14s %d baud, %d bytes\n", d.Name(), d.Baud(), d.MemSize())
		}
		return
	}

	verbose.SetEnabled(*verboseFlag)

	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	if err := logging.InitGlobalLogger(cfg); err != nil {
		fatal(err)
	}
	defer logging.CloseGlobalLogger()

	if *listArchive {
		if err := runListSnapshots(cfg); err != nil {
			fatal(err)
		}
		return
	}

	if flag.NArg() != 1 {
		showHelp()
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	switch {
	case *restoreID != 0:
		err = runRestore(cfg, imagePath)
	case *readRadio:
		err = runRead(cfg, imagePath)
	case *writeRadio:
		err = runWrite(cfg, imagePath)
	case *importPath != "":
		err = runImport(imagePath)
	default:
		err = runShow(imagePath)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	logging.Errorf("main", "%v", err)
	fmt.Fprintf(os.Stderr, "yaesutool: %v\n", err)
	os.Exit(1)
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}
	if *devicePath != "" {
		cfg.Serial.Device = *devicePath
	}
	if *verboseFlag && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// newSession opens the serial port and wires up operator I/O and the
// progress indicator.
func newSession(cfg *config.Config, d radio.Device, im *image.Image) (*radio.Session, func(), error) {
	baud := d.Baud()
	if cfg.Serial.Baud != 0 {
		baud = cfg.Serial.Baud
	}
	timeout := time.Duration(cfg.Serial.ReadTimeoutMs) * time.Millisecond
	port, err := clone.Open(cfg.Serial.Device, baud, timeout)
	if err != nil {
		return nil, nil, err
	}

	s := &radio.Session{
		Port:  port,
		Image: im,
		In:    os.Stdin,
		Out:   os.Stderr,
	}
	if !*verboseFlag {
		ticks := 0
		s.Progress = func() {
			ticks++
			if ticks%16 == 0 {
				fmt.Fprint(os.Stderr, "#")
			}
		}
	}
	return s, func() { port.Close() }, nil
}

// runRead downloads the radio memory, archives it and saves the image file.
func runRead(cfg *config.Config, imagePath string) error {
	if *modelName == "" {
		return fmt.Errorf("-read requires -model (try -list)")
	}
	d := radio.Find(*modelName)
	if d == nil {
		return fmt.Errorf("unknown radio model %q (try -list)", *modelName)
	}

	s, closePort, err := newSession(cfg, d, image.New(d.MemSize()))
	if err != nil {
		return err
	}
	defer closePort()

	logging.Infof("read", "downloading %s on %s at %d baud",
		d.Name(), cfg.Serial.Device, d.Baud())
	if err := d.Download(s); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, " done.\n")

	if !d.IsCompatible(s.Image) {
		return fmt.Errorf("downloaded image is not a %s dump", d.Name())
	}

	archiveSnapshot(cfg, d, s.Image)

	if err := d.SaveImage(imagePath, s.Image); err != nil {
		return err
	}
	logging.Infof("read", "image saved to %s", imagePath)
	return nil
}

// runWrite uploads an image file to the radio.
func runWrite(cfg *config.Config, imagePath string) error {
	d, im, err := loadAndDetect(imagePath)
	if err != nil {
		return err
	}

	s, closePort, err := newSession(cfg, d, im)
	if err != nil {
		return err
	}
	defer closePort()

	logging.Infof("write", "uploading %s to %s on %s at %d baud",
		imagePath, d.Name(), cfg.Serial.Device, d.Baud())
	if err := d.Upload(s, *contWrite); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, " done.\n")
	return nil
}

// runImport applies a text configuration to an image file.
func runImport(imagePath string) error {
	d, im, err := loadAndDetect(imagePath)
	if err != nil {
		return err
	}

	rowErrs, err := textio.ImportFile(*importPath, d, im)
	for _, re := range rowErrs {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *importPath, re)
	}
	if err != nil {
		return err
	}
	if n := len(rowErrs); n > 0 {
		logging.Warnf("import", "%d row(s) rejected from %s", n, *importPath)
	}

	if err := d.SaveImage(imagePath, im); err != nil {
		return err
	}
	logging.Infof("import", "configuration applied to %s", imagePath)
	return nil
}

// runShow prints the text configuration of an image file to stdout.
func runShow(imagePath string) error {
	d, im, err := loadAndDetect(imagePath)
	if err != nil {
		return err
	}
	textio.Export(os.Stdout, d, im, *verboseFlag)
	return nil
}

func runListSnapshots(cfg *config.Config) error {
	store, err := storage.NewImageStore(cfg.Archive.DatabasePath, cfg.Archive.MaxSnapshots)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshots, err := store.ListSnapshots()
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("No archived snapshots.")
		return nil
	}
	fmt.Printf("%5s   %-19s %-14s %6s  %s\n", "ID", "Date", "Model", "Bytes", "Note")
	for _, s := range snapshots {
		fmt.Printf("%5d   %-19s %-14s %6d  %s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Model, s.Size, s.Note)
	}
	return nil
}

// runRestore writes an archived snapshot back out as an image file.
func runRestore(cfg *config.Config, imagePath string) error {
	store, err := storage.NewImageStore(cfg.Archive.DatabasePath, cfg.Archive.MaxSnapshots)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := store.GetSnapshot(*restoreID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(imagePath, s.Data, 0644); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	logging.Infof("archive", "snapshot %d (%s) restored to %s", s.ID, s.Model, imagePath)
	return nil
}

// archiveSnapshot stores a freshly downloaded image in the archive. Archive
// trouble never fails the read; the image on disk is the primary result.
func archiveSnapshot(cfg *config.Config, d radio.Device, im *image.Image) {
	if cfg.Archive.Disabled {
		return
	}
	store, err := storage.NewImageStore(cfg.Archive.DatabasePath, cfg.Archive.MaxSnapshots)
	if err != nil {
		logging.Warnf("archive", "archive unavailable: %v", err)
		return
	}
	defer store.Close()

	id, err := store.SaveSnapshot(d.Name(), *note, im.StoredChecksum(), im.Bytes())
	if err != nil {
		logging.Warnf("archive", "failed to archive snapshot: %v", err)
		return
	}
	logging.Infof("archive", "snapshot %d archived", id)
}

// loadAndDetect loads an image file and finds the model it belongs to, by
// the -model flag if given, otherwise by probing every registered model.
func loadAndDetect(path string) (radio.Device, *image.Image, error) {
	if *modelName != "" {
		d := radio.Find(*modelName)
		if d == nil {
			return nil, nil, fmt.Errorf("unknown radio model %q (try -list)", *modelName)
		}
		im, err := d.LoadImage(path)
		if err != nil {
			return nil, nil, err
		}
		if !d.IsCompatible(im) {
			return nil, nil, fmt.Errorf("%s is not a %s image", path, d.Name())
		}
		return d, im, nil
	}

	for _, d := range radio.List() {
		im, err := d.LoadImage(path)
		if err != nil {
			continue
		}
		if d.IsCompatible(im) {
			logging.Debugf("main", "%s detected as %s", path, d.Name())
			return d, im, nil
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("read image: %w", err)
	}
	return nil, nil, fmt.Errorf("%s is not compatible with any supported radio", path)
}

func showHelp() {
	fmt.Println("yaesutool - Yaesu handheld memory programmer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options] <image.img>\n", os.Args[0])
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -read                Read memory from the radio into <image.img>")
	fmt.Println("  -write               Write <image.img> to the radio")
	fmt.Println("  -continue            With -write: radio is already in clone mode")
	fmt.Println("  -import <file.conf>  Apply a text configuration to <image.img>")
	fmt.Println("  -model <name>        Radio model: VX-2, FT-60R (required for -read)")
	fmt.Println("  -device <path>       Serial device (default /dev/ttyUSB0)")
	fmt.Println("  -config <file.yaml>  Configuration file")
	fmt.Println("  -note <text>         Note stored with the archived snapshot")
	fmt.Println("  -snapshots           List archived memory snapshots")
	fmt.Println("  -restore <id>        Restore archived snapshot into <image.img>")
	fmt.Println("  -list                List supported radio models")
	fmt.Println("  -verbose             Trace the clone protocol, expand exports")
	fmt.Println("  -version             Print version and exit")
	fmt.Println()
	fmt.Println("With no operation flag the image's configuration is printed to stdout.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s -read -model VX-2 -device /dev/ttyUSB0 backup.img\n", os.Args[0])
	fmt.Printf("  %s backup.img > radio.conf\n", os.Args[0])
	fmt.Printf("  %s -import radio.conf backup.img\n", os.Args[0])
	fmt.Printf("  %s -write backup.img\n", os.Args[0])
}
