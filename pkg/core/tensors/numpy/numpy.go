// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package numpy allows one to read/write tensors to Python's NumPy npy and npz file formats.
//
// Tensors are always written as little-endian float64 ('<f8'). When reading, any real numeric NumPy dtype
// (signed and unsigned integers, float16, float32 and float64, in either byte order and in either C or
// Fortran order) is converted to float64. Booleans, complex numbers, strings and structured dtypes are not
// supported.
package numpy

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/gomlx/ndarray/pkg/core/tensors"
	"github.com/gomlx/ndarray/pkg/support/fsutil"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"
)

const npyMagic = "\x93NUMPY"

// headerAlignment of the preamble plus header, as written by NumPy.
const headerAlignment = 64

// FromNpyFile reads a .npy file and returns a tensors.Tensor.
// A leading "~" in filePath is replaced by the home directory.
func FromNpyFile(filePath string) (*tensors.Tensor, error) {
	filePath, err := fsutil.ReplaceTilde(filePath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open .npy file %q", filePath)
	}
	defer func() { _ = file.Close() }()
	return FromNpyReader(file)
}

// FromNpyReader reads a .npy file from an io.Reader and returns a tensors.Tensor.
func FromNpyReader(r io.Reader) (*tensors.Tensor, error) {
	// Read and validate the magic string.
	magic := make([]byte, len(npyMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.Wrapf(err, "failed to read magic string")
	}
	if string(magic) != npyMagic {
		return nil, errors.Errorf("invalid .npy file format: magic string mismatch")
	}

	// Read version: only the major version matters, it defines the size of the header length.
	version := make([]byte, 2)
	if _, err := io.ReadFull(r, version); err != nil {
		return nil, errors.Wrapf(err, "failed to read version")
	}
	var headerLen int
	switch version[0] {
	case 1:
		lenBytes := make([]byte, 2)
		if _, err := io.ReadFull(r, lenBytes); err != nil {
			return nil, errors.Wrapf(err, "failed to read header length (v1.0)")
		}
		headerLen = int(binary.LittleEndian.Uint16(lenBytes))
	case 2, 3:
		lenBytes := make([]byte, 4)
		if _, err := io.ReadFull(r, lenBytes); err != nil {
			return nil, errors.Wrapf(err, "failed to read header length (v%d.0)", version[0])
		}
		headerLen32 := binary.LittleEndian.Uint32(lenBytes)
		if headerLen32 > math.MaxUint16 {
			return nil, errors.Errorf("header length %d exceeds uint16 max", headerLen32)
		}
		headerLen = int(headerLen32)
	default:
		return nil, errors.Errorf("unsupported .npy version: %d.%d", version[0], version[1])
	}

	// Read the header.
	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, errors.Wrapf(err, "failed to read header")
	}

	// Example: "{'descr': '<f4', 'fortran_order': False, 'shape': (1, 2, 3), }"
	descr, dims, fortranOrder, err := parseNpyHeader(string(headerBytes))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to parse .npy header")
	}
	dtype, byteOrder, err := npyDescrToDType(descr)
	if err != nil {
		return nil, err
	}
	shape := shapes.Shape{Dimensions: dims}
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid shape in .npy header")
	}
	klog.V(2).Infof("numpy: reading %s data of shape %s (fortran_order=%v)", dtype, shape, fortranOrder)

	// A valid shape has at most math.MaxInt/8 elements, so the byte count below can't overflow for
	// dtypes up to 8 bytes. Data is read incrementally, so a header claiming a huge shape fails on the
	// missing bytes instead of allocating them upfront.
	dtypeSize := dtype.Size()
	numBytes := shape.Size() * dtypeSize
	data, err := io.ReadAll(io.LimitReader(r, int64(numBytes)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tensor data (expected %d bytes)", numBytes)
	}
	if len(data) != numBytes {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "failed to read tensor data (expected %d bytes, got %d)",
			numBytes, len(data))
	}

	flat := make([]float64, shape.Size())
	if !fortranOrder || shape.Rank() <= 1 {
		// Row-major (C-Order), same as tensors: decode linearly.
		for ii := range flat {
			flat[ii] = decodeValue(dtype, byteOrder, data[ii*dtypeSize:])
		}
	} else {
		fortranStrides := make([]int, shape.Rank())
		stride := 1
		for axis, dim := range shape.Dimensions {
			fortranStrides[axis] = stride
			stride *= dim
		}
		for cOrderIdx, indices := range shape.Iter() {
			fortranOrderIdx := 0
			for axis, axisIdx := range indices {
				fortranOrderIdx += axisIdx * fortranStrides[axis]
			}
			flat[cOrderIdx] = decodeValue(dtype, byteOrder, data[fortranOrderIdx*dtypeSize:])
		}
	}
	return tensors.FromFlat(shape, flat)
}

// decodeValue decodes one value of the given dtype from the start of data, and converts it to float64.
func decodeValue(dtype dtypes.DType, byteOrder binary.ByteOrder, data []byte) float64 {
	switch dtype {
	case dtypes.Int8:
		return float64(int8(data[0]))
	case dtypes.Uint8:
		return float64(data[0])
	case dtypes.Int16:
		return float64(int16(byteOrder.Uint16(data)))
	case dtypes.Uint16:
		return float64(byteOrder.Uint16(data))
	case dtypes.Int32:
		return float64(int32(byteOrder.Uint32(data)))
	case dtypes.Uint32:
		return float64(byteOrder.Uint32(data))
	case dtypes.Int64:
		return float64(int64(byteOrder.Uint64(data)))
	case dtypes.Uint64:
		return float64(byteOrder.Uint64(data))
	case dtypes.Float16:
		return float64(float16.Frombits(byteOrder.Uint16(data)).Float32())
	case dtypes.Float32:
		return float64(math.Float32frombits(byteOrder.Uint32(data)))
	default:
		return math.Float64frombits(byteOrder.Uint64(data))
	}
}

var (
	reDescr   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	reFortran = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	reShape   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// parseNpyHeader extracts dtype, shape, and fortran_order from the .npy header string.
// This is a simplified parser of the Python dict literal, enough for the headers written by NumPy.
func parseNpyHeader(header string) (descr string, dims []int, fortranOrder bool, err error) {
	mDescr := reDescr.FindStringSubmatch(header)
	if len(mDescr) < 2 {
		err = errors.Errorf("could not find 'descr' in header: %q", header)
		return
	}
	descr = mDescr[1]

	mFortran := reFortran.FindStringSubmatch(header)
	if len(mFortran) < 2 {
		err = errors.Errorf("could not find 'fortran_order' in header: %q", header)
		return
	}
	fortranOrder = mFortran[1] == "True"

	mShape := reShape.FindStringSubmatch(header)
	if len(mShape) < 2 {
		err = errors.Errorf("could not find 'shape' in header: %q", header)
		return
	}
	// "()" is a scalar, "(10,)" a 1D array: empty parts are skipped.
	dims = []int{}
	for _, p := range strings.Split(mShape[1], ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Python 2 era files may write longs, like "3L".
		val, pErr := strconv.Atoi(strings.TrimSuffix(p, "L"))
		if pErr != nil {
			err = errors.Wrapf(pErr, "invalid shape value %q in header", p)
			return
		}
		dims = append(dims, val)
	}
	return
}

// npyDescrToDType converts a NumPy dtype descriptor (e.g. '<f4') to a dtypes.DType and its byte order.
func npyDescrToDType(descr string) (dtypes.DType, binary.ByteOrder, error) {
	var byteOrder binary.ByteOrder = binary.LittleEndian
	code := descr
	if len(code) > 0 {
		switch code[0] {
		case '>':
			byteOrder = binary.BigEndian
			code = code[1:]
		case '<', '|', '=':
			code = code[1:]
		}
	}
	var dtype dtypes.DType
	switch code {
	case "i1":
		dtype = dtypes.Int8
	case "u1":
		dtype = dtypes.Uint8
	case "i2":
		dtype = dtypes.Int16
	case "u2":
		dtype = dtypes.Uint16
	case "i4":
		dtype = dtypes.Int32
	case "u4":
		dtype = dtypes.Uint32
	case "i8":
		dtype = dtypes.Int64
	case "u8":
		dtype = dtypes.Uint64
	case "f2":
		dtype = dtypes.Float16
	case "f4":
		dtype = dtypes.Float32
	case "f8":
		dtype = dtypes.Float64
	default:
		return dtypes.InvalidDType, nil, errors.Errorf("unsupported NumPy dtype %q: only real numbers can be read", descr)
	}
	return dtype, byteOrder, nil
}

// FromNpzFile reads a .npz file and returns a map of tensor names to tensors.Tensor.
func FromNpzFile(filePath string) (map[string]*tensors.Tensor, error) {
	filePath, err := fsutil.ReplaceTilde(filePath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open .npz file %q", filePath)
	}
	defer func() { _ = file.Close() }()

	// Need file info for zip.NewReader, which requires a ReaderAt and size.
	info, err := file.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat .npz file %q", filePath)
	}
	return FromNpzReader(file, info.Size())
}

// FromNpzReader reads a .npz file from an io.ReaderAt and size,
// returning a map of tensor names to tensors.Tensor.
// .npz files are zip archives, so we need io.ReaderAt.
func FromNpzReader(r io.ReaderAt, size int64) (map[string]*tensors.Tensor, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create zip reader for `.npz`")
	}

	results := make(map[string]*tensors.Tensor)
	for _, f := range zipReader.File {
		cleanPath := path.Clean(f.Name)
		if path.IsAbs(cleanPath) || strings.HasPrefix(cleanPath, "..") {
			return nil, errors.Errorf(
				"invalid (malicious?) path in .npz archive: %q (normalized to %q)",
				f.Name,
				cleanPath,
			)
		}
		if !strings.HasSuffix(f.Name, ".npy") {
			klog.V(2).Infof("numpy: skipping non-.npy file %q in .npz archive", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %q within .npz", f.Name)
		}
		tensor, err := FromNpyReader(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to read tensor %q from .npz", f.Name)
		}
		results[strings.TrimSuffix(f.Name, ".npy")] = tensor
	}
	return results, nil
}

// ToNpyWriter serializes a tensors.Tensor to an io.Writer in .npy format (version 1.0), as little-endian float64.
func ToNpyWriter(tensor *tensors.Tensor, w io.Writer) error {
	tensor.AssertValid()
	shape := tensor.Shape()

	// Note the trailing comma in shape tuple for 1D arrays, and no comma for 0D.
	var shapeTuple string
	switch shape.Rank() {
	case 0:
		shapeTuple = "()"
	case 1:
		shapeTuple = fmt.Sprintf("(%d,)", shape.Dimensions[0])
	default:
		dimsStr := make([]string, shape.Rank())
		for i, dim := range shape.Dimensions {
			dimsStr[i] = strconv.Itoa(dim)
		}
		shapeTuple = fmt.Sprintf("(%s)", strings.Join(dimsStr, ", "))
	}

	// The preamble (magic, version and header length: 10 bytes) plus the header must be aligned,
	// and the header is terminated with a newline.
	var headerBuf bytes.Buffer
	_, _ = fmt.Fprintf(&headerBuf, "{'descr': '<f8', 'fortran_order': False, 'shape': %s, }", shapeTuple)
	for (10+headerBuf.Len()+1)%headerAlignment != 0 {
		headerBuf.WriteByte(' ')
	}
	headerBuf.WriteByte('\n')

	var preamble bytes.Buffer
	preamble.WriteString(npyMagic)
	preamble.Write([]byte{1, 0})
	_ = binary.Write(&preamble, binary.LittleEndian, uint16(headerBuf.Len()))
	if _, err := w.Write(preamble.Bytes()); err != nil {
		return errors.Wrapf(err, "failed to write .npy preamble")
	}
	if _, err := w.Write(headerBuf.Bytes()); err != nil {
		return errors.Wrapf(err, "failed to write header")
	}
	if err := binary.Write(w, binary.LittleEndian, tensor.CopyFlatData()); err != nil {
		return errors.Wrapf(err, "failed to write tensor data")
	}
	return nil
}

// ToNpyFile serializes a tensors.Tensor to a .npy file.
func ToNpyFile(tensor *tensors.Tensor, filePath string) error {
	filePath, err := fsutil.ReplaceTilde(filePath)
	if err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create .npy file")
	}
	if err := ToNpyWriter(tensor, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "failed to close .npy file %q", filePath)
}

// ToNpzFile serializes a map of tensors to a .npz file.
func ToNpzFile(tensorsMap map[string]*tensors.Tensor, filePath string) error {
	filePath, err := fsutil.ReplaceTilde(filePath)
	if err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create .npz file")
	}
	if err := ToNpzWriter(tensorsMap, file); err != nil {
		_ = file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "failed to close .npz file %q", filePath)
}

// ToNpzWriter serializes a map of tensors to an io.Writer as a .npz archive.
func ToNpzWriter(tensorsMap map[string]*tensors.Tensor, w io.Writer) error {
	zipWriter := zip.NewWriter(w)
	for name, tensor := range tensorsMap {
		npyName := name + ".npy"
		fileWriter, err := zipWriter.Create(npyName)
		if err != nil {
			return errors.Wrapf(err, "failed to create %q in .npz archive", npyName)
		}
		if err := ToNpyWriter(tensor, fileWriter); err != nil {
			return errors.WithMessagef(err, "failed to write tensor %q to .npz archive", name)
		}
	}
	if err := zipWriter.Close(); err != nil {
		return errors.Wrapf(err, "failed to close zip archive")
	}
	return nil
}
