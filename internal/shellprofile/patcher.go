package shellprofile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

const (
	assignmentTemplateConstant          = "export %s=\"%s\""
	assignmentPatternTemplateConstant   = `^(\s*)(export\s+)?%s=`
	wordTerminatorCharactersConstant    = " \t;&|"
	doubleQuoteEscapableConstant        = "$`\"\\"
	expansionCharactersConstant         = "$`"
	lineSeparatorConstant               = "\n"
	newProfilePermissionsConstant       = 0o644
	profileDirectoryPermissionsConstant = 0o755
	profileReadErrorTemplateConstant    = "unable to read %s: %w"
	profileWriteErrorTemplateConstant   = "unable to write %s: %w"
	invalidNameErrorTemplateConstant    = "invalid variable name %q"
	fileSystemMissingMessageConstant    = "file system not configured"
	profilePathRequiredMessageConstant  = "shell profile path required"
	zshShellNameConstant                = "zsh"
	zshProfileFileNameConstant          = ".zshrc"
	bashProfileFileNameConstant         = ".bashrc"
)

var variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	errFileSystemMissing   = errors.New(fileSystemMissingMessageConstant)
	errProfilePathRequired = errors.New(profilePathRequiredMessageConstant)
)

// Assignment is a single exported shell variable.
type Assignment struct {
	Name  string
	Value string
}

// Outcome reports how Apply treated an assignment.
type Outcome string

// Recognized outcomes.
const (
	OutcomeUnchanged Outcome = Outcome("unchanged")
	OutcomeReplaced  Outcome = Outcome("replaced")
	OutcomeAppended  Outcome = Outcome("appended")
)

// FormatAssignment renders the canonical export line for the assignment.
func FormatAssignment(assignment Assignment) string {
	escapedValue := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(assignment.Value)
	return fmt.Sprintf(assignmentTemplateConstant, assignment.Name, escapedValue)
}

// DefaultProfilePath selects the start-up file for the login shell.
func DefaultProfilePath(shellPath string, homeDirectory string) string {
	if filepath.Base(strings.TrimSpace(shellPath)) == zshShellNameConstant {
		return filepath.Join(homeDirectory, zshProfileFileNameConstant)
	}
	return filepath.Join(homeDirectory, bashProfileFileNameConstant)
}

// Patcher rewrites recognized export lines in a shell start-up file.
type Patcher struct {
	fileSystem afero.Fs
}

// NewPatcher constructs a Patcher operating on the provided file system.
func NewPatcher(fileSystem afero.Fs) (*Patcher, error) {
	if fileSystem == nil {
		return nil, errFileSystemMissing
	}
	return &Patcher{fileSystem: fileSystem}, nil
}

// Apply ensures the profile exports the assignment. Lines assigning the same name are replaced in
// place, the canonical line is appended when none exist, and the file is left untouched when every
// existing line already assigns the same value, however it is quoted. A replaced line keeps its
// indentation and whatever follows the value, such as a trailing comment.
func (patcher *Patcher) Apply(profilePath string, assignment Assignment) (Outcome, error) {
	if len(strings.TrimSpace(profilePath)) == 0 {
		return "", errProfilePathRequired
	}
	if !variableNamePattern.MatchString(assignment.Name) {
		return "", fmt.Errorf(invalidNameErrorTemplateConstant, assignment.Name)
	}

	existingContent, fileMode, readError := patcher.readProfile(profilePath)
	if readError != nil {
		return "", fmt.Errorf(profileReadErrorTemplateConstant, profilePath, readError)
	}

	canonicalLine := FormatAssignment(assignment)
	updatedContent, outcome := patchContent(existingContent, assignment, canonicalLine)
	if outcome == OutcomeUnchanged {
		return OutcomeUnchanged, nil
	}

	if directoryError := patcher.fileSystem.MkdirAll(filepath.Dir(profilePath), profileDirectoryPermissionsConstant); directoryError != nil {
		return "", fmt.Errorf(profileWriteErrorTemplateConstant, profilePath, directoryError)
	}
	if writeError := afero.WriteFile(patcher.fileSystem, profilePath, []byte(updatedContent), fileMode); writeError != nil {
		return "", fmt.Errorf(profileWriteErrorTemplateConstant, profilePath, writeError)
	}
	return outcome, nil
}

func (patcher *Patcher) readProfile(profilePath string) (string, os.FileMode, error) {
	fileInformation, statError := patcher.fileSystem.Stat(profilePath)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return "", newProfilePermissionsConstant, nil
		}
		return "", 0, statError
	}
	content, readError := afero.ReadFile(patcher.fileSystem, profilePath)
	if readError != nil {
		return "", 0, readError
	}
	return string(content), fileInformation.Mode().Perm(), nil
}

func patchContent(existingContent string, assignment Assignment, canonicalLine string) (string, Outcome) {
	assignmentPattern := regexp.MustCompile(fmt.Sprintf(assignmentPatternTemplateConstant, regexp.QuoteMeta(assignment.Name)))

	lines := strings.Split(existingContent, lineSeparatorConstant)
	matched := false
	changed := false
	for lineIndex, line := range lines {
		matchIndexes := assignmentPattern.FindStringSubmatchIndex(line)
		if matchIndexes == nil {
			continue
		}
		matched = true

		existingValue, parsed := parseShellWord(line[matchIndexes[1]:])
		if parsed && existingValue.equivalentTo(assignment.Value) {
			continue
		}
		replacementLine := line[:matchIndexes[3]] + canonicalLine
		if parsed {
			replacementLine += existingValue.trailingText
		}
		if replacementLine != line {
			lines[lineIndex] = replacementLine
			changed = true
		}
	}

	if matched {
		if !changed {
			return existingContent, OutcomeUnchanged
		}
		return strings.Join(lines, lineSeparatorConstant), OutcomeReplaced
	}

	if len(existingContent) > 0 && !strings.HasSuffix(existingContent, lineSeparatorConstant) {
		existingContent += lineSeparatorConstant
	}
	return existingContent + canonicalLine + lineSeparatorConstant, OutcomeAppended
}

// shellWord is the value of an assignment as the shell would read it, before expansion.
type shellWord struct {
	text string
	// suppressedExpansion is set when a "$" or "`" in text was quoted or escaped.
	suppressedExpansion bool
	trailingText        string
}

func (word shellWord) equivalentTo(value string) bool {
	return word.text == value && !word.suppressedExpansion
}

// parseShellWord reads one word from the start of input, honouring single quotes, double quotes
// and backslash escapes. It reports false for an unterminated quote or a dangling escape.
func parseShellWord(input string) (shellWord, bool) {
	var word shellWord
	var textBuilder strings.Builder
	characterIndex := 0
	for characterIndex < len(input) {
		character := input[characterIndex]
		switch {
		case character == '\'':
			closingOffset := strings.IndexByte(input[characterIndex+1:], '\'')
			if closingOffset < 0 {
				return shellWord{}, false
			}
			quotedSegment := input[characterIndex+1 : characterIndex+1+closingOffset]
			if strings.ContainsAny(quotedSegment, expansionCharactersConstant) {
				word.suppressedExpansion = true
			}
			textBuilder.WriteString(quotedSegment)
			characterIndex += closingOffset + 2
		case character == '"':
			characterIndex++
			closed := false
			for characterIndex < len(input) {
				quotedCharacter := input[characterIndex]
				if quotedCharacter == '"' {
					closed = true
					characterIndex++
					break
				}
				if quotedCharacter == '\\' && characterIndex+1 < len(input) && strings.IndexByte(doubleQuoteEscapableConstant, input[characterIndex+1]) >= 0 {
					if strings.IndexByte(expansionCharactersConstant, input[characterIndex+1]) >= 0 {
						word.suppressedExpansion = true
					}
					textBuilder.WriteByte(input[characterIndex+1])
					characterIndex += 2
					continue
				}
				textBuilder.WriteByte(quotedCharacter)
				characterIndex++
			}
			if !closed {
				return shellWord{}, false
			}
		case character == '\\':
			if characterIndex+1 >= len(input) {
				return shellWord{}, false
			}
			if strings.IndexByte(expansionCharactersConstant, input[characterIndex+1]) >= 0 {
				word.suppressedExpansion = true
			}
			textBuilder.WriteByte(input[characterIndex+1])
			characterIndex += 2
		case strings.IndexByte(wordTerminatorCharactersConstant, character) >= 0:
			word.text = textBuilder.String()
			word.trailingText = input[characterIndex:]
			return word, true
		default:
			textBuilder.WriteByte(character)
			characterIndex++
		}
	}
	word.text = textBuilder.String()
	return word, true
}
