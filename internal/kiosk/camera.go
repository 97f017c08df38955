package kiosk

import (
	"errors"
	"image"
)

// 摄像头约束的尝试顺序：后置、前置、任意。
const (
	FacingEnvironment = "environment"
	FacingUser        = "user"
	FacingAny         = ""
)

var ErrCameraUnavailable = errors.New("no camera available")

// FrameSource 一路已打开的视频源
type FrameSource interface {
	// Facing 实际打开的朝向
	Facing() string
	// NextFrame 取一帧，没有帧时阻塞或报错
	NextFrame() (image.Image, error)
	Close() error
}

// CameraProvider 按朝向约束打开视频源，打不开返回错误。
type CameraProvider interface {
	Open(facing string) (FrameSource, error)
}

// OpenCamera 依次尝试后置、前置、任意朝向，全部失败才报摄像头错误。
// 摄像头失败不致命，图片上传通道照常可用。
func OpenCamera(provider CameraProvider) (FrameSource, error) {
	for _, facing := range []string{FacingEnvironment, FacingUser, FacingAny} {
		src, err := provider.Open(facing)
		if err == nil {
			return src, nil
		}
	}
	return nil, ErrCameraUnavailable
}
