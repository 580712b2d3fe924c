package vx2

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

func printOffset(w io.Writer, rxHz, txHz int) {
	if !canTransmit(rxHz) {
		fmt.Fprintf(w, " -      ")
		return
	}
	fmt.Fprintf(w, "%s", codec.FormatOffset(rxHz, txHz))
}

func printSquelch(w io.Writer, toneTenths, dcsCode int) {
	fmt.Fprintf(w, "%s", codec.FormatSquelch(toneTenths, dcsCode))
}

func stepLabel(step int) string {
	if step >= 0 && step < len(stepName) {
		return stepName[step]
	}
	return "??"
}

// PrintConfig writes the whole configuration as text: the scalar parameters
// followed by the Channel, Bank, VFO, Home and PMS tables.
func (d *device) PrintConfig(w io.Writer, im *image.Image, verbose bool) {
	// Radio identification and hardware options.
	fmt.Fprintf(w, "Radio: Yaesu VX-2\n")
	fmt.Fprintf(w, "Virtual Jumpers: %02x %02x %02x %02x\n",
		im.At(6), im.At(7), im.At(8), im.At(13))

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
		fmt.Fprintf(w, "# 7) Transmit power: High, Low\n")
		fmt.Fprintf(w, "# 8) Modulation: FM, AM, WFM, NFM, Auto\n")
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
		fmt.Fprintf(w, "%5d   %-7s %7.3f  ", i+1, name, float64(c.RxHz)/1000000.0)
		printOffset(w, c.RxHz, c.TxHz)
		fmt.Fprintf(w, " ")
		printSquelch(w, c.RxTone, c.RxDCS)
		fmt.Fprintf(w, "   ")
		printSquelch(w, c.TxTone, c.TxDCS)
		fmt.Fprintf(w, "   %-4s  %-10s %s\n", powerName[c.Power&3],
			modName[c.Mod], scanName[c.Scan&3])
	}
	if verbose {
		codes.PrintTables(w)
	}

	// Banks.
	if im.U16BE(offsetBankUse1) != 0xffff || im.U16BE(offsetBankUse2) != 0xffff {
		fmt.Fprintf(w, "\n")
		if verbose {
			fmt.Fprintf(w, "# Table of channel banks.\n")
			fmt.Fprintf(w, "# 1) Bank number: 1-%d\n", nbank)
			fmt.Fprintf(w, "# 2) List of channels: numbers and ranges (N-M) separated by comma\n")
			fmt.Fprintf(w, "#\n")
		}
		fmt.Fprintf(w, "Bank    Channels\n")
		for i := 0; i < nbank; i++ {
			printBank(w, im, i)
		}
	}

	// VFO channels.
	fmt.Fprintf(w, "\n")
	if verbose {
		fmt.Fprintf(w, "# Table of VFO mode frequencies.\n")
		fmt.Fprintf(w, "# 1) Band number: 1-11\n")
		fmt.Fprintf(w, "# 2) Receive frequency in MHz\n")
		fmt.Fprintf(w, "# 3) Transmit frequency or +/- offset in MHz\n")
		fmt.Fprintf(w, "# 4) Squelch tone for receive, or '-' to disable\n")
		fmt.Fprintf(w, "# 5) Squelch tone for transmit, or '-' to disable\n")
		fmt.Fprintf(w, "# 6) Dial step in KHz: 5, 9, 10, 12.5, 15, 20, 25, 50, 100\n")
		fmt.Fprintf(w, "# 7) Transmit power: High, Low\n")
		fmt.Fprintf(w, "# 8) Modulation: FM, AM, WFM, NFM, Auto\n")
		fmt.Fprintf(w, "#\n")
	}
	fmt.Fprintf(w, "VFO     Receive  Transmit R-Squel T-Squel Step  Power Modulation\n")
	printBandTable(w, im, offsetVFO)

	// Home channels.
	fmt.Fprintf(w, "\n")
	if verbose {
		fmt.Fprintf(w, "# Table of home frequencies.\n")
		fmt.Fprintf(w, "# 1) Band number: 1-11\n")
		fmt.Fprintf(w, "# 2) Receive frequency in MHz\n")
		fmt.Fprintf(w, "# 3) Transmit frequency or +/- offset in MHz\n")
		fmt.Fprintf(w, "# 4) Squelch tone for receive, or '-' to disable\n")
		fmt.Fprintf(w, "# 5) Squelch tone for transmit, or '-' to disable\n")
		fmt.Fprintf(w, "# 6) Dial step in KHz: 5, 9, 10, 12.5, 15, 20, 25, 50, 100\n")
		fmt.Fprintf(w, "# 7) Transmit power: High, Low\n")
		fmt.Fprintf(w, "# 8) Modulation: FM, AM, WFM, NFM, Auto\n")
		fmt.Fprintf(w, "#\n")
	}
	fmt.Fprintf(w, "Home    Receive  Transmit R-Squel T-Squel Step  Power Modulation\n")
	printBandTable(w, im, offsetHome)

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

// printBank writes one bank row: the bank number and the compressed channel
// list. A bank with the count word unset is skipped.
func printBank(w io.Writer, im *image.Image, i int) {
	count := int(im.U16BE(offsetBankCount + i*2))
	if count >= 100 {
		return
	}
	chans := make([]int, 0, count+1)
	for n := 0; n <= count; n++ {
		chans = append(chans, 1+int(im.U16BE(offsetBanks+i*200+n*2)))
	}
	fmt.Fprintf(w, "%4d    %s\n", i+1, codec.FormatRangeList(chans))
}

// printBandTable writes the VFO or Home table. Record index 4 is unused and
// the band numbering skips it. Only bands 7 and 10 (144 and 430 MHz) can
// transmit.
func printBandTable(w io.Writer, im *image.Image, seek int) {
	for i := 0; i < 12; i++ {
		if i == 4 {
			continue
		}
		band := i
		if i < 4 {
			band = i + 1
		}
		c := decodeChannel(im, seek, i)
		power := "-"
		if i == 6 || i == 9 {
			power = powerName[c.Power&3]
		}
		fmt.Fprintf(w, "%4d   %8.3f  ", band, float64(c.RxHz)/1000000.0)
		printOffset(w, c.RxHz, c.TxHz)
		fmt.Fprintf(w, " ")
		printSquelch(w, c.RxTone, c.RxDCS)
		fmt.Fprintf(w, "   ")
		printSquelch(w, c.TxTone, c.TxDCS)
		fmt.Fprintf(w, "   %-5s %-4s  %s\n", stepLabel(c.Step), power, modName[c.Mod])
	}
}

// ParseParameter applies one scalar parameter line.
func (d *device) ParseParameter(im *image.Image, name, value string) error {
	if strings.EqualFold(name, "Radio") {
		if !strings.EqualFold(value, "Yaesu VX-2") {
			return fmt.Errorf("bad value for %s: %s", name, value)
		}
		return nil
	}
	if strings.EqualFold(name, "Virtual Jumpers") {
		var a, b, c, e uint32
		if n, _ := fmt.Sscanf(value, "%x %x %x %x", &a, &b, &c, &e); n != 4 {
			return fmt.Errorf("wrong value: %s = %s", name, value)
		}
		im.SetAt(6, byte(a))
		im.SetAt(7, byte(b))
		im.SetAt(8, byte(c))
		im.SetAt(13, byte(e))
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
	case hasPrefixFold(line, "VFO"):
		return radio.TableVFO
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
		return parseBandRow(im, offsetHome, line)
	case radio.TableVFO:
		return parseBandRow(im, offsetVFO, line)
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

// parseFreqPair parses the receive frequency column and the transmit column,
// which holds either "-" for simplex, a +/- offset relative to the receive
// frequency, or an absolute transmit frequency, all in MHz.
func parseFreqPair(rxStr, offStr string) (rxMHz, txMHz float64, err error) {
	rxMHz, err = strconv.ParseFloat(rxStr, 64)
	if err != nil || !isValidFrequency(rxMHz) {
		return 0, 0, fmt.Errorf("bad receive frequency")
	}
	if offStr == "-" {
		return rxMHz, rxMHz, nil
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
	case strings.EqualFold(s, "Low"), s == "-":
		return pwrLow, nil
	}
	return 0, fmt.Errorf("bad power level")
}

func parseModulation(s string) (int, error) {
	switch {
	case strings.EqualFold(s, "FM"):
		return modFM, nil
	case strings.EqualFold(s, "AM"):
		return modAM, nil
	case strings.EqualFold(s, "WFM"):
		return modWFM, nil
	case strings.EqualFold(s, "NFM"):
		return modNFM, nil
	case strings.EqualFold(s, "Auto"):
		return modAuto, nil
	}
	return 0, fmt.Errorf("bad modulation")
}

func parseStep(s string) (int, error) {
	switch s {
	case "5":
		return step5, nil
	case "9":
		return step9, nil
	case "10":
		return step10, nil
	case "12.5":
		return step12_5, nil
	case "15":
		return step15, nil
	case "20":
		return step20, nil
	case "25":
		return step25, nil
	case "50":
		return step50, nil
	case "100":
		return step100, nil
	}
	return 0, fmt.Errorf("bad frequency step")
}

func parseSquelchPair(rxStr, txStr string) (tmode, tone, dcs int, err error) {
	rx, err := codec.ParseSquelch(rxStr, false)
	if err != nil {
		return 0, 0, 0, err
	}
	tx, err := codec.ParseSquelch(txStr, false)
	if err != nil {
		return 0, 0, 0, err
	}
	tmode, tone, dcs = encodeSquelch(rx, tx)
	return tmode, tone, dcs, nil
}

// parseChannel applies one memory channel row. On the first row of the
// table the whole channel region and its flags are erased.
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
	tmode, tone, dcs, err := parseSquelchPair(fields[4], fields[5])
	if err != nil {
		return err
	}
	power, err := parsePower(fields[6])
	if err != nil {
		return err
	}
	amfm, err := parseModulation(fields[7])
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
		im.Fill(offsetChannels, nchan*chanSize, 0xff)
		im.Fill(offsetFlags, nchan/2, 0)
	}
	setupChannel(im, num-1, fields[1], rxMHz, txMHz, tmode, tone, dcs, power, scan, amfm)
	return nil
}

// parseBandRow applies one Home or VFO table row.
func parseBandRow(im *image.Image, seek int, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 8 {
		return fmt.Errorf("wrong number of fields")
	}
	band, err := strconv.Atoi(fields[0])
	if err != nil || band < 1 || band > 11 {
		return fmt.Errorf("incorrect band")
	}
	rxMHz, txMHz, err := parseFreqPair(fields[1], fields[2])
	if err != nil {
		return err
	}
	tmode, tone, dcs, err := parseSquelchPair(fields[3], fields[4])
	if err != nil {
		return err
	}
	step, err := parseStep(fields[5])
	if err != nil {
		return err
	}
	power, err := parsePower(fields[6])
	if err != nil {
		return err
	}
	amfm, err := parseModulation(fields[7])
	if err != nil {
		return err
	}
	setupBandChannel(im, seek, band, rxMHz, txMHz, tmode, tone, dcs, power, amfm, step)
	return nil
}

// parsePMS applies one programmable memory scan row: a pair number and the
// lower and upper sub-band limits.
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
		im.Fill(offsetPMS, npms*2*chanSize, 0xff)
		im.Fill(offsetFlags+nchan/2, npms, 0)
	}
	setupPMS(im, num*2-2, lowerMHz)
	setupPMS(im, num*2-1, upperMHz)
	return nil
}

// parseBanks applies one bank row: a bank number and a channel list. The
// channel order in the list is preserved in the bank.
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
		im.Fill(offsetBanks, nbank*200, 0xff)
		im.Fill(offsetBankCount, nbank*2, 0xff)
		im.Fill(offsetBankUse1, 2, 0xff)
		im.Fill(offsetBankUse2, 2, 0xff)
	}

	chans, err := codec.ParseRangeList(fields[1], nchan)
	if err != nil {
		return fmt.Errorf("bank %d: %v", bnum, err)
	}
	if len(chans) == 0 {
		return nil
	}
	for _, cnum := range chans {
		if !setupBank(im, bnum-1, cnum-1) {
			return fmt.Errorf("bank %d: too many channels", bnum)
		}
	}
	im.SetU16BE(offsetBankCount+(bnum-1)*2, uint16(len(chans)-1))

	// Clear unused flag.
	im.Fill(offsetBankUse1, 2, 0)
	im.Fill(offsetBankUse2, 2, 0)
	return nil
}
