// Package microdb is an embedded, flash-resident document store for
// memory-constrained microcontrollers. It persists a collection of
// JSON-like documents inside a contiguous region of flash and supports
// query, insert, in-place update, and array-append without a
// filesystem. An update holds at most one page of flash contents in
// RAM at a time. That page buffer, and the small byte slices returned
// by PageDevice reads, are allocated on the Go heap per call; no
// buffer is allocated once and reused.
//
// # References:
//
// Flash hardware (SPIDevice):
//   - [FTDI-AN_108]: Command Processor for MPSSE and MCU Host Bus Emulation Modes
//   - [FTDI-AN_114]: Interfacing FT2232H Hi-Speed Devices To SPI Bus
//   - [FTDI-AN_135]: FTDI MPSSE Basics
//   - [N25Q32]: N25Q032A Micron Serial NOR Flash Memory datasheet
//   - [W25Q128]: W25Q128JV-DTR Winbond Serial Flash Memory
//
// Document encoding and update engine: ported from the microcDB project
// (Mrunal Ahirao), which targets an STM32 internal flash controller via
// HAL_FLASH_Program/HAL_FLASHEx_Erase.
package microdb
