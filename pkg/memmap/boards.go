package memmap

// RaspberryPi3 returns the map of the reference board: a 16 MiB header arena
// at 0x0100_0000, the kernel image loaded at 0x8_0000 with its stack growing
// down from there, and the peripheral window at 0x3F00_0000.
func RaspberryPi3() *Map {
	return &Map{
		Board: "rpi3",
		Arena: &Arena{
			Range:  Range{Name: "heap", Base: 0x0100_0000, Limit: 0x0200_0000},
			Header: true,
		},
		Reserved: []Range{
			{Name: "firmware", Base: 0x0000_0000, Limit: 0x0000_1000},
			{Name: "stack", Base: 0x0000_1000, Limit: 0x0008_0000},
			{Name: "kernel", Base: 0x0008_0000, Limit: 0x0100_0000},
			{Name: "mmio", Base: 0x3F00_0000, Limit: 0x4000_0000},
		},
	}
}
