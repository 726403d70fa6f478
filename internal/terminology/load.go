package terminology

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Load error codes.
const (
	ErrCodeNotFound          = "TERMINOLOGY_DIR_NOT_FOUND"
	ErrCodeNoFiles           = "TERMINOLOGY_NO_FILES"
	ErrCodeLoadFailed        = "TERMINOLOGY_LOAD_FAILED"
	ErrCodeBuildFailed       = "TERMINOLOGY_BUILD_FAILED"
	ErrCodeBadValueSet       = "TERMINOLOGY_BAD_VALUESET"
	ErrCodeDuplicateCategory = "TERMINOLOGY_DUPLICATE_CATEGORY"
	ErrCodeOverlap           = "TERMINOLOGY_OVERLAP"
)

// LoadError is a terminology configuration error. All LoadErrors are
// fatal at startup; the registry is never partially usable.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// valueSetDecl mirrors the CUE shape of one value set declaration:
//
//	valueset: "mammography": {
//		label: "bilateral mammography"
//		role:  "numerator"
//		codes: [{system: "CPT", code: "77067"}, ...]
//	}
type valueSetDecl struct {
	Label string `json:"label"`
	Role  string `json:"role"`
	Codes []Code `json:"codes"`
}

// Load reads every CUE file in dir, decodes the `valueset` declarations,
// and builds a validated Registry. The returned registry is immutable.
func Load(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("terminology directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("accessing terminology directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	setsVal := value.LookupPath(cue.ParsePath("valueset"))
	if !setsVal.Exists() {
		return nil, &LoadError{Code: ErrCodeBadValueSet, Message: "no `valueset` declarations found"}
	}

	iter, err := setsVal.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadValueSet, Message: fmt.Sprintf("iterating valuesets: %v", err)}
	}

	var sets []*CodeSet
	for iter.Next() {
		category := iter.Label()
		var decl valueSetDecl
		if err := iter.Value().Decode(&decl); err != nil {
			return nil, &LoadError{Code: ErrCodeBadValueSet, Message: fmt.Sprintf("valueset %q: %v", category, err)}
		}
		set, err := buildSet(category, decl)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return newRegistry(sets)
}

func buildSet(category string, decl valueSetDecl) (*CodeSet, error) {
	if strings.TrimSpace(decl.Label) == "" {
		return nil, &LoadError{Code: ErrCodeBadValueSet, Message: fmt.Sprintf("valueset %q: missing label", category)}
	}
	role := Role(decl.Role)
	switch role {
	case RoleNumerator, RoleExclusion, RoleOther:
	default:
		return nil, &LoadError{Code: ErrCodeBadValueSet, Message: fmt.Sprintf("valueset %q: unknown role %q", category, decl.Role)}
	}
	if len(decl.Codes) == 0 {
		return nil, &LoadError{Code: ErrCodeBadValueSet, Message: fmt.Sprintf("valueset %q: no codes", category)}
	}

	members := make(map[Code]struct{}, len(decl.Codes))
	for _, c := range decl.Codes {
		if c.System == "" || c.Code == "" {
			return nil, &LoadError{Code: ErrCodeBadValueSet, Message: fmt.Sprintf("valueset %q: code entry missing system or code", category)}
		}
		members[c] = struct{}{}
	}

	return &CodeSet{Category: category, Label: decl.Label, Role: role, members: members}, nil
}

func findCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// NewSet builds a CodeSet directly from codes. Intended for tests that
// need synthetic registries without CUE fixtures.
func NewSet(category, label string, role Role, codes ...Code) *CodeSet {
	members := make(map[Code]struct{}, len(codes))
	for _, c := range codes {
		members[c] = struct{}{}
	}
	return &CodeSet{Category: category, Label: label, Role: role, members: members}
}

// NewRegistry builds a registry from explicit sets, applying the same
// validation as Load. Intended for tests.
func NewRegistry(sets ...*CodeSet) (*Registry, error) {
	return newRegistry(sets)
}
