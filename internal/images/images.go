// Package images maps command buttons to image regions. Only the
// configuration is handled here; pixel data is loaded by whoever renders the
// buttons.
package images

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/specialistvlad/hatremote/internal/configio"
	"github.com/specialistvlad/hatremote/internal/ids"
)

const (
	fileTypeResources = "image resources config"
	fileTypeCommands  = "images to commands config"
)

var ErrUnknownImage = errors.New("unknown image id")

// XY is a position or a size in pixels.
type XY struct {
	X, Y int
}

// Info locates an image region inside a file. Size defaults to the largest
// value, which means "up to the image border".
type Info struct {
	Path   string
	Origin XY
	Size   XY
}

// Resources holds both image configs for one set of environments.
type Resources struct {
	envs     []string
	infos    map[ids.ImageID]Info
	order    []ids.ImageID
	commands []map[ids.CommandID]ids.ImageID
}

func NewResources(environments []string) *Resources {
	r := &Resources{
		envs:     slices.Clone(environments),
		infos:    make(map[ids.ImageID]Info),
		commands: make([]map[ids.CommandID]ids.ImageID, len(environments)),
	}
	for i := range r.commands {
		r.commands[i] = make(map[ids.CommandID]ids.ImageID)
	}
	return r
}

// Consume reads the resources config and then the command mapping, which may
// only reference images declared in the former. On error r is unchanged.
func (r *Resources) Consume(resources, commands io.Reader) error {
	scratch := r.clone()
	lines, err := configio.ReadLines(resources, configio.SkipBlankAndComments)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := scratch.pushResource(line.Text); err != nil {
			return configio.Wrap(fileTypeResources, line.Number, err)
		}
	}

	lines, err = configio.ReadLines(commands, configio.SkipBlankAndComments)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := scratch.pushCommand(line.Text); err != nil {
			return configio.Wrap(fileTypeCommands, line.Number, err)
		}
	}
	*r = *scratch
	return nil
}

// ImageInfo returns the region registered for id.
func (r *Resources) ImageInfo(id ids.ImageID) (Info, error) {
	info, ok := r.infos[id]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	return info, nil
}

// ImagesForEnv returns the images attached to commands in env.
func (r *Resources) ImagesForEnv(env int) map[ids.CommandID]ids.ImageID {
	if env < 0 || env >= len(r.commands) {
		return nil
	}
	return r.commands[env]
}

// Images lists the declared images in file order.
func (r *Resources) Images() []ids.ImageID { return slices.Clone(r.order) }

func tooMany(limit int) configio.FieldFunc {
	return func(_ string, index int, hasMore bool) (bool, error) {
		if index >= limit || (index == limit-1 && hasMore) {
			return false, errors.New("Too many parameters are provided in the configuration file line")
		}
		return true, nil
	}
}

var errNotEnough = errors.New("Not enough parameters provided in the configuration file line")

// pushResource: image id, file path, optional "x,y" origin, optional "w,h" size.
func (r *Resources) pushResource(row string) error {
	fields, err := configio.Split(row, '\t', tooMany(4))
	if err != nil {
		return err
	}
	if len(fields) < 2 {
		return errNotEnough
	}
	id := ids.ImageID(fields[0])
	if !id.NonEmpty() {
		return errors.New("ImageID is an empty string in the configuration file line")
	}
	if fields[1] == "" {
		return errors.New("Filename is an empty string in the configuration file line. This is not allowed. Please provide a valid image file name.")
	}
	if _, dup := r.infos[id]; dup {
		return fmt.Errorf("Duplicated image id detected in the config file. This is not allowed. Image id: %s", id)
	}

	info := Info{Path: fields[1], Size: XY{X: math.MaxInt, Y: math.MaxInt}}
	if len(fields) > 2 {
		if info.Origin, err = parseXY(fields[2]); err != nil {
			return fmt.Errorf("image origin: %w", err)
		}
	}
	if len(fields) > 3 {
		if info.Size, err = parseXY(fields[3]); err != nil {
			return fmt.Errorf("image size: %w", err)
		}
	}
	r.infos[id] = info
	r.order = append(r.order, id)
	return nil
}

// pushCommand: command id, environment name, image id.
func (r *Resources) pushCommand(row string) error {
	fields, err := configio.Split(row, '\t', tooMany(3))
	if err != nil {
		return err
	}
	if len(fields) == 2 && strings.HasSuffix(row, "\t") {
		// the image column is present but empty
		fields = append(fields, "")
	}
	if len(fields) < 3 {
		return errNotEnough
	}
	cmd, envName, img := ids.CommandID(fields[0]), fields[1], ids.ImageID(fields[2])
	if !cmd.NonEmpty() {
		return errors.New("CommandID is an empty string in the configuration file line. This is not allowed. Please provide a valid commandID.")
	}
	if !img.NonEmpty() {
		return errors.New("ImageID is an empty string in the configuration file line. This is not allowed. Please provide a valid imageID.")
	}
	env := slices.Index(r.envs, envName)
	if env < 0 {
		return fmt.Errorf("Unknown environment id: %q", envName)
	}
	if _, ok := r.infos[img]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownImage, img)
	}
	r.commands[env][cmd] = img
	return nil
}

func parseXY(s string) (XY, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return XY{}, fmt.Errorf("expected \"x,y\", got %q", s)
	}
	x, err := strconv.ParseUint(strings.TrimSpace(xs), 10, 31)
	if err != nil {
		return XY{}, fmt.Errorf("invalid number %q: %w", xs, err)
	}
	y, err := strconv.ParseUint(strings.TrimSpace(ys), 10, 31)
	if err != nil {
		return XY{}, fmt.Errorf("invalid number %q: %w", ys, err)
	}
	return XY{X: int(x), Y: int(y)}, nil
}

func (r *Resources) clone() *Resources {
	out := NewResources(r.envs)
	for id, info := range r.infos {
		out.infos[id] = info
	}
	out.order = slices.Clone(r.order)
	for i, m := range r.commands {
		for k, v := range m {
			out.commands[i][k] = v
		}
	}
	return out
}
