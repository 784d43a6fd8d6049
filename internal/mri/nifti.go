package mri

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"dipole-explorer/internal/transform"
)

// NIfTI-1 header constants.
const (
	niftiHeaderSize = 348
	niftiMagicN1    = "n+1"

	dtypeUint8   = 2
	dtypeInt16   = 4
	dtypeInt32   = 8
	dtypeFloat32 = 16
	dtypeFloat64 = 64
)

// LoadNIfTI reads a NIfTI-1 volume from a .nii or .nii.gz file. Only
// single-file (n+1 magic) images are supported. The sform affine is used
// when valid, falling back to pixel spacings on the diagonal.
func LoadNIfTI(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return readNIfTI(r)
}

// niftiHeader is the subset of the NIfTI-1 header the loader uses.
type niftiHeader struct {
	SizeofHdr  int32
	_          [36]byte // data_type, db_name, extents, session_error, regular, dim_info
	Dim        [8]int16
	_          [14]byte // intent_p1..p3, intent_code
	Datatype   int16
	Bitpix     int16
	SliceStart int16
	Pixdim     [8]float32
	VoxOffset  float32
	SclSlope   float32
	SclInter   float32
	_          [132]byte // slice_end..aux_file
	QformCode  int16
	SformCode  int16
	_          [24]byte // quaternion and qoffset fields
	SrowX      [4]float32
	SrowY      [4]float32
	SrowZ      [4]float32
	_          [16]byte // intent_name
	Magic      [4]byte
}

func readNIfTI(r io.Reader) (*Volume, error) {
	var hdr niftiHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading NIfTI header: %w", err)
	}
	if hdr.SizeofHdr != niftiHeaderSize {
		return nil, fmt.Errorf("bad header size %d (big-endian files are not supported)", hdr.SizeofHdr)
	}
	if string(hdr.Magic[:3]) != niftiMagicN1 {
		return nil, fmt.Errorf("bad magic %q, want single-file NIfTI-1", hdr.Magic[:3])
	}
	if hdr.Dim[0] < 3 {
		return nil, fmt.Errorf("need a 3-D image, got %d dimensions", hdr.Dim[0])
	}

	nx, ny, nz := int(hdr.Dim[1]), int(hdr.Dim[2]), int(hdr.Dim[3])
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%dx%d", nx, ny, nz)
	}

	// Skip from end of header to start of voxel data.
	skip := int64(hdr.VoxOffset) - niftiHeaderSize
	if skip < 0 {
		return nil, fmt.Errorf("vox_offset %v before end of header", hdr.VoxOffset)
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return nil, fmt.Errorf("seeking to voxel data: %w", err)
	}

	n := nx * ny * nz
	data, err := readVoxels(r, hdr.Datatype, n)
	if err != nil {
		return nil, err
	}

	// Apply intensity scaling when present.
	if hdr.SclSlope != 0 && (hdr.SclSlope != 1 || hdr.SclInter != 0) {
		for i := range data {
			data[i] = data[i]*hdr.SclSlope + hdr.SclInter
		}
	}

	return NewVolume(nx, ny, nz, data, voxelAffine(&hdr))
}

func readVoxels(r io.Reader, datatype int16, n int) ([]float32, error) {
	out := make([]float32, n)

	switch datatype {
	case dtypeUint8:
		buf := make([]uint8, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("reading voxels: %w", err)
		}
		for i, b := range buf {
			out[i] = float32(b)
		}
	case dtypeInt16:
		buf := make([]int16, n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("reading voxels: %w", err)
		}
		for i, s := range buf {
			out[i] = float32(s)
		}
	case dtypeInt32:
		buf := make([]int32, n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("reading voxels: %w", err)
		}
		for i, s := range buf {
			out[i] = float32(s)
		}
	case dtypeFloat32:
		if err := binary.Read(r, binary.LittleEndian, out); err != nil {
			return nil, fmt.Errorf("reading voxels: %w", err)
		}
	case dtypeFloat64:
		buf := make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("reading voxels: %w", err)
		}
		for i, s := range buf {
			out[i] = float32(s)
		}
	default:
		return nil, fmt.Errorf("unsupported NIfTI datatype %d", datatype)
	}

	for i, s := range out {
		if math.IsNaN(float64(s)) {
			out[i] = 0
		}
	}
	return out, nil
}

func voxelAffine(hdr *niftiHeader) *transform.Transform {
	if hdr.SformCode > 0 {
		return transform.FromMatrix([4][4]float64{
			{float64(hdr.SrowX[0]), float64(hdr.SrowX[1]), float64(hdr.SrowX[2]), float64(hdr.SrowX[3])},
			{float64(hdr.SrowY[0]), float64(hdr.SrowY[1]), float64(hdr.SrowY[2]), float64(hdr.SrowY[3])},
			{float64(hdr.SrowZ[0]), float64(hdr.SrowZ[1]), float64(hdr.SrowZ[2]), float64(hdr.SrowZ[3])},
			{0, 0, 0, 1},
		})
	}

	// Fall back to spacings, centering the volume on the origin.
	dx, dy, dz := float64(hdr.Pixdim[1]), float64(hdr.Pixdim[2]), float64(hdr.Pixdim[3])
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	if dz == 0 {
		dz = 1
	}
	return transform.FromMatrix([4][4]float64{
		{dx, 0, 0, -dx * float64(hdr.Dim[1]) / 2},
		{0, dy, 0, -dy * float64(hdr.Dim[2]) / 2},
		{0, 0, dz, -dz * float64(hdr.Dim[3]) / 2},
		{0, 0, 0, 1},
	})
}
