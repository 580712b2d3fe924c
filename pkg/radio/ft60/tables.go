package ft60

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dougsko/yaesutool/pkg/codec"
	"github.com/dougsko/yaesutool/pkg/codes"
	"github.com/dougsko/yaesutool/pkg/image"
	"github.com/dougsko/yaesutool/pkg/radio"
)

func printSquelch(w io.Writer, toneTenths, dcsCode int) {
	fmt.Fprintf(w, "%s", codec.FormatSquelch(toneTenths, dcsCode))
}

func modulationLabel(c channel) string {
	if c.IsAM {
		return "AM"
	}
	if c.Wide {
		return "Wide"
	}
	return "Narrow"
}

// PrintConfig writes the whole configuration as text: the radio parameter
// followed by the Channel, Bank, Home and PMS tables. The VFO table is not
// exported; the radio rewrites it constantly and round-tripping it adds
// nothing.
func (d *device) PrintConfig(w io.Writer, im *image.Image, verbose bool) {
	fmt.Fprintf(w, "Radio: Yaesu FT-60R\n")

	// Memory channels.
	fmt.Fprintf(w, "\n")
	if verbose {
		fmt.Fprintf(w, "# Table of preprogrammed channels.\n")
		fmt.Fprintf(w, "# 1) Channel number: 1-%d\n", nchan)
		fmt.Fprintf(w, "# 2) Name: up to 6 characters, no spaces\n")
		fmt.Fprintf(w, "# 3) Receive frequency in MHz\n")
		fmt.Fprintf(w, "# 4) Transmit frequency or +/- offset in MHz\n")
		fmt.Fprintf(w, "# 5) Squelch tone for receive, or '-' to disable\n")
		fmt.Fprintf(w, "# 6) Squelch tone for transmit, or '-' to disable\n")
		fmt.Fprintf(w, "# 7) Transmit power: High, Mid, Low\n")
		fmt.Fprintf(w, "# 8) Modulation: Wide, Narrow, AM\n")
		fmt.Fprintf(w, "# 9) Scan mode: +, -, Only\n")
		fmt.Fprintf(w, "#\n")
	}
	fmt.Fprintf(w, "Channel Name    Receive  Transmit R-Squel T-Squel Power Modulation Scan\n")
	for i := 0; i < nchan; i++ {
		c := decodeChannel(im, offsetChannels, i)
		if c.RxHz == 0 {
			// Channel is disabled
			continue
		}
		name := c.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%5d   %-7s %8.4f ", i+1, name, float64(c.RxHz)/1000000.0)
		fmt.Fprintf(w, "%s", codec.FormatOffset(c.RxHz, c.TxHz))
		fmt.Fprintf(w, " ")
		printSquelch(w, c.RxTone, c.RxDCS)
		fmt.Fprintf(w, "   ")
		printSquelch(w, c.TxTone, c.TxDCS)
		fmt.Fprintf(w, "   %-4s  %-10s %s\n", powerName[c.Power&3],
			modulationLabel(c), scanName[c.Scan&3])
	}
	if verbose {
		codes.PrintTables(w)
	}

	// Banks.
	haveBanks := false
	for b := 0; b < nbank; b++ {
		if bankHasChannels(im, b) {
			haveBanks = true
			break
		}
	}
	if haveBanks {
		fmt.Fprintf(w, "\n")
		if verbose {
			fmt.Fprintf(w, "# Table of channel banks.\n")
			fmt.Fprintf(w, "# 1) Bank number: 1-%d\n", nbank)
			fmt.Fprintf(w, "# 2) List of channels: numbers and ranges (N-M) separated by comma\n")
			fmt.Fprintf(w, "#\n")
		}
		fmt.Fprintf(w, "Bank    Channels\n")
		for b := 0; b < nbank; b++ {
			if bankHasChannels(im, b) {
				fmt.Fprintf(w, "%4d    %s\n", b+1,
					codec.FormatRangeList(bankChannels(im, b)))
			}
		}
	}

	// Home channels.
	fmt.Fprintf(w, "\n")
	if verbose {
		fmt.Fprintf(w, "# Table of home frequencies.\n")
		fmt.Fprintf(w, "# 1) Band: 144, 250, 350, 430 or, 850\n")
		fmt.Fprintf(w, "# 2) Receive frequency in MHz\n")
		fmt.Fprintf(w, "# 3) Transmit frequency or +/- offset in MHz\n")
		fmt.Fprintf(w, "# 4) Squelch tone for receive, or '-' to disable\n")
		fmt.Fprintf(w, "# 5) Squelch tone for transmit, or '-' to disable\n")
		fmt.Fprintf(w, "# 6) Transmit power: High, Mid, Low\n")
		fmt.Fprintf(w, "# 7) Modulation: Wide, Narrow, AM\n")
		fmt.Fprintf(w, "#\n")
	}
	fmt.Fprintf(w, "Home    Receive  Transmit R-Squel T-Squel Power Modulation\n")
	for i := 0; i < 5; i++ {
		c := decodeChannel(im, offsetHome, i)
		fmt.Fprintf(w, "%5s   %8.4f ", bandName[i], float64(c.RxHz)/1000000.0)
		fmt.Fprintf(w, "%s", codec.FormatOffset(c.RxHz, c.TxHz))
		fmt.Fprintf(w, " ")
		printSquelch(w, c.RxTone, c.RxDCS)
		fmt.Fprintf(w, "   ")
		printSquelch(w, c.TxTone, c.TxDCS)
		fmt.Fprintf(w, "   %-4s  %s\n", powerName[c.Power&3], modulationLabel(c))
	}

	// Programmable memory scan.
	fmt.Fprintf(w, "\n")
	if verbose {
		fmt.Fprintf(w, "# Programmable memory scan: list of sub-band limits.\n")
		fmt.Fprintf(w, "# 1) PMS pair number: 1-%d\n", npms)
		fmt.Fprintf(w, "# 2) Lower frequency in MHz\n")
		fmt.Fprintf(w, "# 3) Upper frequency in MHz\n")
		fmt.Fprintf(w, "#\n")
	}
	fmt.Fprintf(w, "PMS     Lower    Upper\n")
	for i := 0; i < npms; i++ {
		lower := decodeChannel(im, offsetPMS, i*2)
		upper := decodeChannel(im, offsetPMS, i*2+1)
		if lower.RxHz == 0 && upper.RxHz == 0 {
			continue
		}
		fmt.Fprintf(w, "%5d   ", i+1)
		if lower.RxHz == 0 {
			fmt.Fprintf(w, "-       ")
		} else {
			fmt.Fprintf(w, "%8.4f", float64(lower.RxHz)/1000000.0)
		}
		if upper.RxHz == 0 {
			fmt.Fprintf(w, " -\n")
		} else {
			fmt.Fprintf(w, " %8.4f\n", float64(upper.RxHz)/1000000.0)
		}
	}
}

// ParseParameter applies one scalar parameter line. The FT-60 has a single
// parameter, the radio identity.
func (d *device) ParseParameter(im *image.Image, name, value string) error {
	if strings.EqualFold(name, "Radio") {
		if !strings.EqualFold(value, "Yaesu FT-60R") {
			return fmt.Errorf("bad value for %s: %s", name, value)
		}
		return nil
	}
	return fmt.Errorf("unknown parameter: %s = %s", name, value)
}

// ParseHeader recognizes the table headers of the text configuration.
func (d *device) ParseHeader(line string) radio.TableID {
	switch {
	case hasPrefixFold(line, "Channel"):
		return radio.TableChannel
	case hasPrefixFold(line, "Home"):
		return radio.TableHome
	case hasPrefixFold(line, "PMS"):
		return radio.TablePMS
	case hasPrefixFold(line, "Bank"):
		return radio.TableBank
	}
	return radio.TableNone
}

// ParseRow applies one table data row.
func (d *device) ParseRow(im *image.Image, table radio.TableID, firstRow bool, line string) error {
	switch table {
	case radio.TableChannel:
		return parseChannel(im, firstRow, line)
	case radio.TableHome:
		return parseHome(im, line)
	case radio.TablePMS:
		return parsePMS(im, firstRow, line)
	case radio.TableBank:
		return parseBanks(im, firstRow, line)
	}
	return fmt.Errorf("unknown table")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// parseFreqPair parses the receive frequency column and the transmit
// column, which holds either a +/- offset relative to the receive frequency
// or an absolute transmit frequency, all in MHz.
func parseFreqPair(rxStr, offStr string) (rxMHz, txMHz float64, err error) {
	rxMHz, err = strconv.ParseFloat(rxStr, 64)
	if err != nil || !isValidFrequency(rxMHz) {
		return 0, 0, fmt.Errorf("bad receive frequency")
	}
	txMHz, err = strconv.ParseFloat(offStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad transmit frequency")
	}
	if offStr[0] == '-' || offStr[0] == '+' {
		txMHz += rxMHz
	}
	if !isValidFrequency(txMHz) {
		return 0, 0, fmt.Errorf("bad transmit frequency")
	}
	return rxMHz, txMHz, nil
}

func parsePower(s string) (int, error) {
	switch {
	case strings.EqualFold(s, "High"):
		return pwrHigh, nil
	case strings.EqualFold(s, "Mid"):
		return pwrMid, nil
	case strings.EqualFold(s, "Low"):
		return pwrLow, nil
	}
	return 0, fmt.Errorf("bad power level")
}

func parseModulation(s string) (wide, isam bool, err error) {
	switch {
	case strings.EqualFold(s, "Wide"):
		return true, false, nil
	case strings.EqualFold(s, "Narrow"):
		return false, false, nil
	case strings.EqualFold(s, "AM"):
		return true, true, nil
	}
	return false, false, fmt.Errorf("bad modulation width")
}

func parseSquelchPair(rxStr, txStr string) (tmode, tone, dtcs int, err error) {
	rx, err := codec.ParseSquelch(rxStr, true)
	if err != nil {
		return 0, 0, 0, err
	}
	tx, err := codec.ParseSquelch(txStr, false)
	if err != nil {
		return 0, 0, 0, err
	}
	tmode, tone, dtcs = encodeSquelch(rx, tx)
	return tmode, tone, dtcs, nil
}

// parseChannel applies one memory channel row. On the first row of the
// table every channel is reset to its erased state.
func parseChannel(im *image.Image, firstRow bool, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 9 {
		return fmt.Errorf("wrong number of fields")
	}
	num, err := strconv.Atoi(fields[0])
	if err != nil || num < 1 || num > nchan {
		return fmt.Errorf("bad channel number")
	}
	rxMHz, txMHz, err := parseFreqPair(fields[2], fields[3])
	if err != nil {
		return err
	}
	tmode, tone, dtcs, err := parseSquelchPair(fields[4], fields[5])
	if err != nil {
		return err
	}
	power, err := parsePower(fields[6])
	if err != nil {
		return err
	}
	wide, isam, err := parseModulation(fields[7])
	if err != nil {
		return err
	}
	var scan int
	switch {
	case fields[8][0] == '+':
		scan = scanNormal
	case fields[8][0] == '-':
		scan = scanSkip
	case strings.EqualFold(fields[8], "Only"):
		scan = scanPreferential
	default:
		return fmt.Errorf("bad scan flag")
	}

	if firstRow {
		// On first entry, erase the channel table.
		for i := 0; i < nchan; i++ {
			setupChannel(im, i, "", 0, 0, tOff, codes.ToneDefault, 0, 0, true, scanNormal, false)
		}
	}
	setupChannel(im, num-1, fields[1], rxMHz, txMHz, tmode, tone, dtcs, power, wide, scan, isam)
	return nil
}

// parseHome applies one home channel row.
func parseHome(im *image.Image, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 7 {
		return fmt.Errorf("wrong number of fields")
	}
	band, err := strconv.Atoi(fields[0])
	if err != nil || (band != 144 && band != 250 && band != 350 && band != 430 && band != 850) {
		return fmt.Errorf("incorrect band")
	}
	rxMHz, txMHz, err := parseFreqPair(fields[1], fields[2])
	if err != nil {
		return err
	}
	tmode, tone, dtcs, err := parseSquelchPair(fields[3], fields[4])
	if err != nil {
		return err
	}
	power, err := parsePower(fields[5])
	if err != nil {
		return err
	}
	wide, isam, err := parseModulation(fields[6])
	if err != nil {
		return err
	}
	setupHome(im, band, rxMHz, txMHz, tmode, tone, dtcs, power, wide, isam)
	return nil
}

// parsePMS applies one programmable memory scan row.
func parsePMS(im *image.Image, firstRow bool, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return fmt.Errorf("wrong number of fields")
	}
	num, err := strconv.Atoi(fields[0])
	if err != nil || num < 1 || num > npms {
		return fmt.Errorf("bad PMS number")
	}
	lowerMHz, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || !isValidFrequency(lowerMHz) {
		return fmt.Errorf("bad lower frequency")
	}
	upperMHz, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || !isValidFrequency(upperMHz) {
		return fmt.Errorf("bad upper frequency")
	}

	if firstRow {
		// On first entry, erase the PMS table.
		for i := 0; i < npms; i++ {
			setupPMS(im, i, 0, 0)
		}
	}
	setupPMS(im, num-1, lowerMHz, upperMHz)
	return nil
}

// parseBanks applies one bank row: a bank number and a channel list.
func parseBanks(im *image.Image, firstRow bool, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return fmt.Errorf("wrong number of fields")
	}
	bnum, err := strconv.Atoi(fields[0])
	if err != nil || bnum < 1 || bnum > nbank {
		return fmt.Errorf("bad bank number")
	}

	if firstRow {
		// On first entry, erase the Banks table.
		im.Fill(offsetBanks, nbank*0x80, 0)
	}

	chans, err := codec.ParseRangeList(fields[1], nchan)
	if err != nil {
		return fmt.Errorf("bank %d: %v", bnum, err)
	}
	for _, cnum := range chans {
		setupBank(im, bnum-1, cnum-1)
	}
	return nil
}
