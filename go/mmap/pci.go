package mmap

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PCIDevicesDir lists PCI functions by domain:bus:device.function.
var PCIDevicesDir = "/sys/bus/pci/devices"

const DefaultBAR = 2

var (
	pciFunction = regexp.MustCompile(`^[0-9a-fA-F]{4}:[0-9a-fA-F]{2}:[0-9a-fA-F]{2}\.[0-7]$`)
	pciVendor   = regexp.MustCompile(`^([0-9a-fA-F]{1,4}):([0-9a-fA-F]{1,4})$`)
)

func readHexID(path string) (uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	n, err := strconv.ParseUint(s, 16, 16)
	return uint16(n), errors.Wrap(err, path)
}

// FindPCI returns the sorted PCI functions under dir whose vendor and device
// IDs match. Entries without readable IDs are skipped.
func FindPCI(dir string, vendor, device uint16) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "list pci devices")
	}
	var ids []string
	for _, e := range entries {
		v, err := readHexID(filepath.Join(dir, e.Name(), "vendor"))
		if err != nil || v != vendor {
			continue
		}
		d, err := readHexID(filepath.Join(dir, e.Name(), "device"))
		if err != nil || d != device {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// PCIResource returns the resource file mapping a BAR of a PCI function.
// sel is either a function address (0000:03:00.0) or a vendor:device pair
// (10ee:903f), which picks the first matching function.
func PCIResource(dir, sel string, bar uint) (string, error) {
	if bar > 5 {
		return "", errors.Errorf("pci bar %d out of range (0-5)", bar)
	}
	id := strings.ToLower(sel)
	if m := pciVendor.FindStringSubmatch(sel); m != nil {
		vendor, _ := strconv.ParseUint(m[1], 16, 16)
		device, _ := strconv.ParseUint(m[2], 16, 16)
		ids, err := FindPCI(dir, uint16(vendor), uint16(device))
		if err != nil {
			return "", err
		}
		if len(ids) == 0 {
			return "", errors.Errorf("no pci device with vendor %#04x device %#04x", vendor, device)
		}
		id = ids[0]
	} else if !pciFunction.MatchString(sel) {
		return "", errors.Errorf("%q is not a pci function (domain:bus:device.function) or vendor:device", sel)
	}
	if _, err := os.Stat(filepath.Join(dir, id)); err != nil {
		return "", errors.Errorf("pci device %s does not exist", id)
	}
	path := filepath.Join(dir, id, fmt.Sprintf("resource%d", bar))
	if _, err := os.Stat(path); err != nil {
		return "", errors.Errorf("pci device %s has no bar %d", id, bar)
	}
	return path, nil
}
